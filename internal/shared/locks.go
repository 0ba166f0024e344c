package shared

import "fmt"

// SubmitLockKey builds the redis key guarding a form submission.
func SubmitLockKey(sessionID, formKey string) string {
	return fmt.Sprintf("submit:%s:%s:lock", sessionID, formKey)
}

// CollectionKey builds the redis key for a cached list collection.
func CollectionKey(sessionID, resource string) string {
	return fmt.Sprintf("collection:%s:%s", sessionID, resource)
}

// DraftKey builds the redis key for a persisted form draft.
func DraftKey(sessionID, formKey string) string {
	return fmt.Sprintf("draft:%s:%s", sessionID, formKey)
}
