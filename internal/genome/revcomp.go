package genome

import "strings"

var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	pairs := []string{"AT", "CG", "RY", "KM", "BV", "DH", "SS", "WW", "NN"}
	for _, p := range pairs {
		for _, c := range []string{p, strings.ToLower(p)} {
			complement[c[0]] = c[1]
			complement[c[1]] = c[0]
		}
	}
}

// Complement returns the Watson-Crick complement of a single base.
// Case is preserved and bytes outside the IUPAC alphabet are returned unchanged.
func Complement(b byte) byte {
	return complement[b]
}

// ReverseComplement reverses seq and complements every base.
func ReverseComplement(seq string) string {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complement[seq[n-1-i]]
	}
	return string(out)
}
