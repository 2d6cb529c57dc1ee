package srtp

// MasterKeyMaterial is the master key and master salt supplied by the
// external key exchange (DTLS-SRTP, MIKEY, ...). It is held only long enough
// to derive session keys: contexts derive their session keys from it without
// keeping a copy, and TransformEngine.Close scrubs the engine's copies.
type MasterKeyMaterial struct {
	Key  []byte
	Salt []byte
}

func (m MasterKeyMaterial) clone() MasterKeyMaterial {
	return MasterKeyMaterial{
		Key:  append([]byte(nil), m.Key...),
		Salt: append([]byte(nil), m.Salt...),
	}
}

func (m MasterKeyMaterial) scrub() {
	clearBytes(m.Key)
	clearBytes(m.Salt)
}

// sessionKeys is the derived triple used directly by a context's crypto
// operations. It is derived once, at context construction, and scrubbed on
// Close; after Close no plaintext key bytes remain reachable from the
// owning context.
type sessionKeys struct {
	encKey  []byte
	authKey []byte
	salt    []byte
}

func (k sessionKeys) scrub() {
	clearBytes(k.encKey)
	clearBytes(k.authKey)
	clearBytes(k.salt)
}

// clearBytes zeroes a slice in place. The compiler recognizes this loop
// shape and lowers it to a single memclr.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
