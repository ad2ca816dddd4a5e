package models

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/eventhub/backend/internal/domain/billing"
)

// CallbackLogModel is one inbound gateway callback as received.
type CallbackLogModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key"`
	Gateway       string         `gorm:"type:varchar(20);not null;index:idx_callback_logs_gateway_tx"`
	TransactionID string         `gorm:"type:varchar(64);index:idx_callback_logs_gateway_tx"`
	Payload       datatypes.JSON `gorm:"not null"`
	Outcome       string         `gorm:"type:varchar(32);not null;index"`
	Error         string         `gorm:"type:text"`
	ReceivedAt    time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CallbackLogModel) TableName() string {
	return "payment_callback_logs"
}

// FromDomain populates the persistence model from a domain CallbackLog.
func (m *CallbackLogModel) FromDomain(l *billing.CallbackLog) {
	m.ID = l.ID
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Gateway = string(l.Gateway)
	m.TransactionID = l.TransactionID
	m.Payload = CallbackPayloadJSON(l.Payload)
	m.Outcome = string(l.Outcome)
	m.Error = l.Error
	m.ReceivedAt = l.ReceivedAt
	if m.ReceivedAt.IsZero() {
		m.ReceivedAt = time.Now()
	}
}

// ToDomain converts the persistence model to a domain CallbackLog.
func (m *CallbackLogModel) ToDomain() *billing.CallbackLog {
	return &billing.CallbackLog{
		ID:            m.ID,
		Gateway:       billing.GatewayType(m.Gateway),
		TransactionID: m.TransactionID,
		Payload:       []byte(m.Payload),
		Outcome:       billing.CallbackOutcome(m.Outcome),
		Error:         m.Error,
		ReceivedAt:    m.ReceivedAt,
	}
}

// CallbackPayloadJSON normalizes a raw callback body for the JSON column.
// JSON bodies are stored as is; query strings (VNPay) become an object of
// their first values; anything else is kept under "raw".
func CallbackPayloadJSON(raw []byte) datatypes.JSON {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return datatypes.JSON(trimmed)
	}

	if strings.Contains(trimmed, "=") {
		values, err := url.ParseQuery(strings.TrimPrefix(trimmed, "?"))
		if err == nil {
			flat := make(map[string]string, len(values))
			for k := range values {
				flat[k] = values.Get(k)
			}
			if encoded, err := json.Marshal(flat); err == nil {
				return datatypes.JSON(encoded)
			}
		}
	}

	encoded, _ := json.Marshal(map[string]string{"raw": trimmed})
	return datatypes.JSON(encoded)
}
