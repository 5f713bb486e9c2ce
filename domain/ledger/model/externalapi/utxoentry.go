package externalapi

// UTXOEntry is the ledger's view of an unspent output: the amount it holds
// and the public key entitled to spend it.
// Implementations must be immutable.
type UTXOEntry interface {
	Amount() int64
	PublicKey() []byte // The public key is returned by value
	Equal(other UTXOEntry) bool
}
