package session

// Credential is the persisted session credential.
//
// Token is an opaque bearer token issued by the backend. SavedAt is the unix
// time the credential was written and is zero for records migrated from v1.
type Credential struct {
	SchemaVersion uint8
	Token         string
	SavedAt       int64
}
