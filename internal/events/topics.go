package events

const (
	TopicProductChanged = "catalog.product.changed"
	TopicSyncCompleted  = "catalog.sync.completed"
	TopicSyncFailed     = "catalog.sync.failed"
)

// Partition key = product_id, supaya semua event 1 product maintain urutan.
func PartitionKey(productID string) []byte { return []byte(productID) }
