package bot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/receiptbot/receiptbot/internal/receipt"
)

// DefaultCurrency is assumed for rooms that never had a currency set.
const DefaultCurrency = "USD"

// ChannelRegistry tracks which rooms a user has subscribed the bot to and
// the display currency configured per room. Both live in the same keyed
// store as receipts: the channel list is one record per user, the currency
// one record per room.
type ChannelRegistry struct {
	store receipt.Store
}

func NewChannelRegistry(store receipt.Store) *ChannelRegistry {
	return &ChannelRegistry{store: store}
}

// Add subscribes a room to the user's channel list. Adding a room that is
// already on the list is a no-op.
func (c *ChannelRegistry) Add(roomID, userID string) error {
	rooms, err := c.Channels(userID)
	if err != nil {
		return err
	}
	for _, id := range rooms {
		if id == roomID {
			return nil
		}
	}
	rooms = append(rooms, roomID)

	data, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("encoding channel list: %w", err)
	}
	if err := c.store.UpsertByKeys([]string{receipt.UserChannelsKey(userID)}, data); err != nil {
		return fmt.Errorf("saving channel list: %w", err)
	}
	return nil
}

// Channels returns the rooms on the user's channel list, empty when the
// user never added one.
func (c *ChannelRegistry) Channels(userID string) ([]string, error) {
	records, err := c.store.ReadByKeys([]string{receipt.UserChannelsKey(userID)})
	if err != nil {
		return nil, fmt.Errorf("reading channel list: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var rooms []string
	if err := json.Unmarshal(records[0].Data, &rooms); err != nil {
		return nil, fmt.Errorf("decoding channel list: %w", err)
	}
	return rooms, nil
}

// SetCurrency configures the display currency for a room. The code is
// stored uppercased.
func (c *ChannelRegistry) SetCurrency(roomID, currency string) error {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return fmt.Errorf("currency code is empty")
	}

	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encoding currency: %w", err)
	}
	if err := c.store.UpsertByKeys([]string{receipt.RoomCurrencyKey(roomID)}, data); err != nil {
		return fmt.Errorf("saving currency: %w", err)
	}
	return nil
}

// Currency returns the room's configured currency, or DefaultCurrency when
// none was ever set.
func (c *ChannelRegistry) Currency(roomID string) (string, error) {
	records, err := c.store.ReadByKeys([]string{receipt.RoomCurrencyKey(roomID)})
	if err != nil {
		return "", fmt.Errorf("reading currency: %w", err)
	}
	if len(records) == 0 {
		return DefaultCurrency, nil
	}

	var code string
	if err := json.Unmarshal(records[0].Data, &code); err != nil {
		return "", fmt.Errorf("decoding currency: %w", err)
	}
	if code == "" {
		return DefaultCurrency, nil
	}
	return code, nil
}
