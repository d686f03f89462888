// Package cli implements the totpkeeper command-line client.
//
// Commands:
//
//	signup [username]          create an account and print its provisioning URI
//	login [username]           authenticate, rotating the TOTP secret
//	verify [username] --code   check a code from the authenticator app
//	ping                       check that the server is reachable
//	keygen                     print a fresh server encryption key
//
// signup and login accept --qr to also write the provisioning URI as a PNG
// QR code. Passwords are always read from the terminal without echo.
package cli
