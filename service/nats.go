package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBroadcaster publishes enriched events on <prefix>.<tracker_ident>.
type NATSBroadcaster struct {
	conn   *nats.Conn
	prefix string
}

// DialNATS connects with reconnects enabled.
func DialNATS(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("tracker-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func NewNATSBroadcaster(conn *nats.Conn, prefix string) *NATSBroadcaster {
	return &NATSBroadcaster{conn: conn, prefix: prefix}
}

func (b *NATSBroadcaster) Publish(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return b.conn.Publish(subjectFor(b.prefix, env.Data.TrackerIdent), data)
}

var subjectReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")

// subjectFor builds a single-token subject suffix from an identifier.
func subjectFor(prefix, ident string) string {
	return prefix + "." + subjectReplacer.Replace(ident)
}
