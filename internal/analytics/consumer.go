package analytics

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/trie-search-engine/pkg/kafka"
)

// HandleMessage returns a kafka.MessageHandler that records each published
// SearchEvent into agg. Undecodable messages are returned as errors and
// left uncommitted.
func HandleMessage(agg *Aggregator) kafka.MessageHandler {
	return func(_ context.Context, _ []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			return err
		}
		agg.Record(event)
		return nil
	}
}
