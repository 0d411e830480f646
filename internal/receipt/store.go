package receipt

// Association keys index stored records. A record is written under several
// keys at once and looked up by intersecting the record sets of multiple
// keys. The shapes mirror the chat platform's association model.

// UserReceiptsKey indexes all receipts of a user.
func UserReceiptsKey(userID string) string {
	return "user:" + userID + ":receipts"
}

// UserChannelsKey indexes a user's registered channel list.
func UserChannelsKey(userID string) string {
	return "user:" + userID + ":channels"
}

// RoomKey indexes everything in a room.
func RoomKey(roomID string) string {
	return "room:" + roomID
}

// MessageKey ties a receipt to the chat message it was extracted from.
func MessageKey(messageID string) string {
	return "msg:" + messageID
}

// DateKey indexes receipts by upload date (zero-padded ISO).
func DateKey(date string) string {
	return "date:" + date
}

// ThreadKey indexes receipts posted inside a thread.
func ThreadKey(threadID string) string {
	return "thread:" + threadID
}

// RoomCurrencyKey holds a room's configured currency code.
func RoomCurrencyKey(roomID string) string {
	return "currency:" + roomID
}

// Record is a stored blob plus its storage identity.
type Record struct {
	ID   string
	Data []byte
}

// Store defines the interface for the keyed store. Lookups intersect the
// given keys; an empty result is an empty slice, not an error. There are no
// transactions across keys.
type Store interface {
	// CreateWithKeys stores data under all given association keys
	CreateWithKeys(keys []string, data []byte) (string, error)

	// ReadByKeys returns every record associated with all given keys
	ReadByKeys(keys []string) ([]Record, error)

	// UpdateByKeys replaces the data of every record matching all given keys
	UpdateByKeys(keys []string, data []byte) error

	// UpsertByKeys updates the matching record, or creates one if none matches
	UpsertByKeys(keys []string, data []byte) error

	// RemoveByKeys deletes every record matching all given keys.
	// Removing a non-existent key tuple is a no-op.
	RemoveByKeys(keys []string) error

	// Close closes the store
	Close() error
}
