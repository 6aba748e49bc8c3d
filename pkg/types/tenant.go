package types

// Account tiers. Routes declare the minimum tier they require.
const (
	TierNone  = 0
	TierBasic = 1
	TierPro   = 2
)

// Account is the owner of a tenant keyspace.
type Account struct {
	AccountID string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Tier      int    `json:"tier"`
	APIKey    string `json:"api_key"`
}

// TenantContext identifies the verified caller of a request. It is passed
// explicitly to every resolver, registry and object store call.
type TenantContext struct {
	APIKey    string
	AccountID string
	Tier      int
}

// Key returns the tenant keyspace the context scopes. All handle
// uniqueness is per Key.
func (tc TenantContext) Key() string {
	return tc.APIKey
}

// Validate rejects a context that carries no tenant key.
func (tc TenantContext) Validate() error {
	if tc.APIKey == "" {
		return ErrUnauthenticated
	}
	return nil
}

// Context returns the TenantContext for the account.
func (a Account) Context() TenantContext {
	return TenantContext{APIKey: a.APIKey, AccountID: a.AccountID, Tier: a.Tier}
}
