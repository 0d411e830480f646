package receipt

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Repository composes association-key lookups over a Store. All queries
// return an empty slice, never an error, when nothing matches.
type Repository struct {
	store   Store
	archive Archive
}

// NewRepository creates a new Repository
func NewRepository(store Store) *Repository {
	return &Repository{store: store}
}

// NewRepositoryWithArchive creates a Repository that also cleans up archived
// attachment files when their receipt is deleted.
func NewRepositoryWithArchive(store Store, archive Archive) *Repository {
	return &Repository{store: store, archive: archive}
}

// tupleKeys is the identity key set of a receipt: (room, message, user) plus
// thread when present. The tuple must be unique in the store.
func tupleKeys(roomID, messageID, userID, threadID string) []string {
	keys := []string{RoomKey(roomID), MessageKey(messageID), UserReceiptsKey(userID)}
	if threadID != "" {
		keys = append(keys, ThreadKey(threadID))
	}
	return keys
}

// storageKeys is the full index key set a receipt is written under.
func storageKeys(r Receipt) []string {
	keys := []string{
		RoomKey(r.RoomID),
		MessageKey(r.MessageID),
		UserReceiptsKey(r.UserID),
		DateKey(r.UploadedDate),
	}
	if r.ThreadID != "" {
		keys = append(keys, ThreadKey(r.ThreadID))
	}
	return keys
}

// Save stores a receipt. Re-adding the same identity tuple overwrites the
// existing record instead of duplicating it.
func (r *Repository) Save(rcpt Receipt) error {
	rcpt.SchemaVersion = CurrentSchemaVersion
	data, err := json.Marshal(rcpt)
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}

	existing, err := r.store.ReadByKeys(tupleKeys(rcpt.RoomID, rcpt.MessageID, rcpt.UserID, rcpt.ThreadID))
	if err != nil {
		return fmt.Errorf("checking for existing receipt: %w", err)
	}
	if len(existing) > 0 {
		if err := r.store.UpdateByKeys(tupleKeys(rcpt.RoomID, rcpt.MessageID, rcpt.UserID, rcpt.ThreadID), data); err != nil {
			return fmt.Errorf("updating receipt: %w", err)
		}
		return nil
	}

	if _, err := r.store.CreateWithKeys(storageKeys(rcpt), data); err != nil {
		return fmt.Errorf("saving receipt: %w", err)
	}
	return nil
}

// Get returns the receipt stored under the full identity tuple, or nil.
func (r *Repository) Get(roomID, messageID, userID, threadID string) (*Receipt, error) {
	receipts, err := r.readByKeys(tupleKeys(roomID, messageID, userID, threadID))
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, nil
	}
	return &receipts[0], nil
}

// Delete removes the receipt stored under the full identity tuple, along
// with its archived attachment when an archive is configured. Deleting a
// missing tuple is a no-op, keeping deletion idempotent.
func (r *Repository) Delete(roomID, messageID, userID, threadID string) error {
	keys := tupleKeys(roomID, messageID, userID, threadID)

	archivePath := ""
	if r.archive != nil {
		receipts, err := r.readByKeys(keys)
		if err != nil {
			return err
		}
		if len(receipts) > 0 {
			archivePath = receipts[0].ArchivePath
		}
	}

	if err := r.store.RemoveByKeys(keys); err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}

	if archivePath != "" {
		// best effort: the record is already gone, and a missing file just
		// means archiving failed at ingest time
		_ = r.archive.Delete(archivePath)
	}
	return nil
}

// ByUserAndRoom returns a user's receipts in a room.
func (r *Repository) ByUserAndRoom(userID, roomID string) ([]Receipt, error) {
	return r.readByKeys([]string{UserReceiptsKey(userID), RoomKey(roomID)})
}

// ByRoom returns every receipt in a room.
func (r *Repository) ByRoom(roomID string) ([]Receipt, error) {
	return r.readByKeys([]string{RoomKey(roomID)})
}

// ByRoomAndDate returns a room's receipts uploaded on a given ISO date.
func (r *Repository) ByRoomAndDate(roomID, date string) ([]Receipt, error) {
	return r.readByKeys([]string{RoomKey(roomID), DateKey(date)})
}

// ByThread returns every receipt in a thread.
func (r *Repository) ByThread(roomID, threadID string) ([]Receipt, error) {
	return r.readByKeys([]string{RoomKey(roomID), ThreadKey(threadID)})
}

// ByThreadAndUser returns a user's receipts in a thread.
func (r *Repository) ByThreadAndUser(roomID, threadID, userID string) ([]Receipt, error) {
	return r.readByKeys([]string{RoomKey(roomID), ThreadKey(threadID), UserReceiptsKey(userID)})
}

// ByUserAndDateRange returns a user's receipts in a room whose receipt date
// falls inside [startDate, endDate], inclusive on both ends. The range is
// not indexed: it fetches the (user, room) intersection and filters by
// comparing zero-padded ISO dates lexicographically.
func (r *Repository) ByUserAndDateRange(userID, roomID, startDate, endDate string) ([]Receipt, error) {
	receipts, err := r.ByUserAndRoom(userID, roomID)
	if err != nil {
		return nil, err
	}

	filtered := make([]Receipt, 0, len(receipts))
	for _, rcpt := range receipts {
		date := rcpt.rangeDate()
		if date >= startDate && date <= endDate {
			filtered = append(filtered, rcpt)
		}
	}
	return filtered, nil
}

func (r *Repository) readByKeys(keys []string) ([]Receipt, error) {
	records, err := r.store.ReadByKeys(keys)
	if err != nil {
		return nil, fmt.Errorf("reading receipts: %w", err)
	}

	receipts := make([]Receipt, 0, len(records))
	for _, record := range records {
		rcpt, err := decodeReceipt(record.Data)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, rcpt)
	}

	// Oldest first so "most recently observed" semantics downstream are
	// well defined
	sort.SliceStable(receipts, func(i, j int) bool {
		if receipts[i].rangeDate() != receipts[j].rangeDate() {
			return receipts[i].rangeDate() < receipts[j].rangeDate()
		}
		return receipts[i].MessageID < receipts[j].MessageID
	})
	return receipts, nil
}
