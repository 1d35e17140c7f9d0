package domain

import "fmt"

// ConversationKey derives the identifier of the implicit conversation between
// two users. The pair is unordered: ConversationKey(a, b) == ConversationKey(b, a).
// The same derivation partitions persisted history, live relay and insight
// caching, so all three always agree.
func ConversationKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("conv_%d_%d", a, b)
}
