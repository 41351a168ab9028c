package domain

// VersionedValue is a KV entry tagged with its Lamport timestamp and the
// identity of the writer that produced it.
type VersionedValue struct {
	Value     string `json:"value"`
	Timestamp uint64 `json:"ts"`
	Writer    string `json:"writer_id"`
}

// Dominates reports whether v strictly wins over other under the
// last-writer-wins order: (Timestamp, Writer) lexicographic, with byte-wise
// writer comparison as the tie-break. The order is total for distinct
// writers, so concurrent writes at the same timestamp still converge.
func (v VersionedValue) Dominates(other VersionedValue) bool {
	if v.Timestamp != other.Timestamp {
		return v.Timestamp > other.Timestamp
	}
	return v.Writer > other.Writer
}
