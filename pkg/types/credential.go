package types

// Credential is a decrypted exchange API key pair. It is consumed only by
// the signed request client and must never be logged.
type Credential struct {
	UserID    string       `json:"userID"`
	Exchange  ExchangeName `json:"exchange"`
	AccessKey string       `json:"-"`
	SecretKey string       `json:"-"`
}

// MaskedAccessKey keeps the first four characters for operator display.
func (c Credential) MaskedAccessKey() string {
	if len(c.AccessKey) <= 4 {
		return "****"
	}
	return c.AccessKey[0:4] + "****"
}
