package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodec_Registered(t *testing.T) {
	c := encoding.GetCodec("json")
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())

	b, err := c.Marshal(&AccountResponse{ID: "1", Username: "alice", EncryptedSecret: []byte{0xff}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","username":"alice","encrypted_secret":"/w==","provisioning_uri":"","current_code":""}`, string(b))

	var out AccountResponse
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, []byte{0xff}, out.EncryptedSecret)
}

func TestAccountServiceDesc(t *testing.T) {
	assert.Equal(t, "totpkeeper.AccountService", AccountServiceDesc.ServiceName)

	var names []string
	for _, m := range AccountServiceDesc.Methods {
		names = append(names, m.MethodName)
	}
	assert.ElementsMatch(t, []string{"SignUp", "Login", "VerifyCode", "Ping"}, names)
	assert.Equal(t, "/totpkeeper.AccountService/Login", LoginFullMethodName)
}
