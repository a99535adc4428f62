// Package accounts encodes and decodes named account records.
//
// Every encoded account starts with an 8-byte discriminator,
// sha256("account:" + name)[:8], followed by the payload laid out by the
// account's compiled layout:
//
//	coder, err := accounts.NewWithDefaults(s)
//	data, err := coder.Encode("Multisig", map[string]any{
//		"owners":        []string{ownerA, ownerB},
//		"threshold":     2,
//		"nonce":         255,
//		"ownerSetSeqno": 0,
//	})
//	v, err := coder.Decode("Multisig", data)
//
// Decode accepts bytes after the payload unless Options.Strict is set.
// Identify and DecodeAny find the account by its discriminator.
package accounts
