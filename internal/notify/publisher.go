// Package notify is the change feed between the CRUD layer and the
// synchronized view-model store: one JSON event per insert/update/delete on a
// watched table, fanned out over Redis pub/sub. Subscribers only use events
// as a refresh trigger, so missed events are harmless: the next refresh is
// always a full snapshot.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Watched table names. Channel per table: crm:changes:<table>.
const (
	TableContacts      = "contacts"
	TableInteractions  = "interactions"
	TableFinancials    = "financials"
	TableAlerts        = "alerts"
	TableInternalNotes = "internal_notes"
)

const channelPrefix = "crm:changes:"

// Tables lists every watched table (parent plus the four child collections).
var Tables = []string{TableContacts, TableInteractions, TableFinancials, TableAlerts, TableInternalNotes}

// Event 数据变更事件
type Event struct {
	Table     string `json:"table"`
	Action    string `json:"action"` // "insert" | "update" | "delete"
	RecordID  string `json:"record_id"`
	ContactID string `json:"contact_id,omitempty"`
	At        int64  `json:"at"` // unix millis
}

// Publisher 变更事件发布者
type Publisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewPublisher(client *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Publish sends one change event. Failures are logged, not returned: the
// mutation itself already succeeded and the feed is best-effort.
func (p *Publisher) Publish(ctx context.Context, table, action, recordID, contactID string) {
	ev := Event{
		Table:     table,
		Action:    action,
		RecordID:  recordID,
		ContactID: contactID,
		At:        time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("Failed to marshal change event", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, Channel(table), payload).Err(); err != nil {
		p.logger.Warn("Failed to publish change event",
			zap.String("table", table),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// Channel returns the pub/sub channel for a table.
func Channel(table string) string {
	return fmt.Sprintf("%s%s", channelPrefix, table)
}
