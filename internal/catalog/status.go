package catalog

type SyncStatus string

const (
	SyncUnsynced SyncStatus = "unsynced"
	SyncPending  SyncStatus = "pending"
	SyncSynced   SyncStatus = "synced"
	SyncFailed   SyncStatus = "failed"
)

var validNext = map[SyncStatus]map[SyncStatus]bool{
	SyncUnsynced: {SyncPending: true},
	SyncPending:  {SyncSynced: true, SyncFailed: true},
	SyncSynced:   {SyncPending: true}, // product diedit lagi -> re-sync
	SyncFailed:   {SyncPending: true}, // manual re-enqueue
}

func CanTransition(from, to SyncStatus) bool {
	return validNext[from][to]
}
