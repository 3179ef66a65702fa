package config

import (
	"os"
	"time"

	"github.com/nats-io/nats.go"
)

var NATSConn *nats.Conn

// InitNATS connects when NATS_URL is set. It is optional: without it activity
// is not published off-box and NATSConn stays nil.
func InitNATS() error {
	url := os.Getenv("NATS_URL")
	if url == "" {
		return nil
	}

	nc, err := nats.Connect(url,
		nats.Name("hireloop"),
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return err
	}
	NATSConn = nc
	return nil
}
