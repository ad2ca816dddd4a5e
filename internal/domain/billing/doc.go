// Package billing holds the invoicing and payment domain: invoices frozen from an
// event's priced services, payment attempts against external gateways, and the
// port those gateways are adapted to.
package billing
