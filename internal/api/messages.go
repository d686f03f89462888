package api

type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountResponse describes an account to its owner. The password hash is
// never part of it. CurrentCode is the TOTP code for the secret just issued.
type AccountResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	EncryptedSecret []byte `json:"encrypted_secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	CurrentCode     string `json:"current_code"`
}

type VerifyCodeRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

type VerifyCodeResponse struct {
	Valid bool `json:"valid"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
