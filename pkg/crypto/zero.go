package crypto

// Zero overwrites b with zeros. Used on seeds and private keys once they are
// no longer needed.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
