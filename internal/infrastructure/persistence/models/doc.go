// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel shared by invoices and payments
// - billing.go: invoices, invoice_lines, payments
// - callback_log.go: payment_callback_logs audit rows
// - planning.go: events, event_services, services (read side of the event catalog)
package models
