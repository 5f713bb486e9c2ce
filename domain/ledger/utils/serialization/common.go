package serialization

import (
	"encoding/binary"
	"io"

	"github.com/kaspanet/ledgerselect/domain/ledger/model/externalapi"
	"github.com/pkg/errors"
)

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

var errMalformed = errors.New("errMalformed")

// MaxVarBytesLength bounds every length-prefixed byte slice read from a
// stream, so a corrupted length can't trigger a huge allocation.
const MaxVarBytesLength = 1 << 20

// WriteElement writes the little endian representation of element to w.
func WriteElement(w io.Writer, element interface{}) error {
	var err error
	switch e := element.(type) {
	case uint8, uint16, uint32, uint64, int64:
		err = binary.Write(w, binary.LittleEndian, e)

	case []byte:
		err = WriteElement(w, uint64(len(e)))
		if err == nil {
			_, err = w.Write(e)
		}

	case externalapi.DomainHash:
		_, err = w.Write(e.ByteSlice())

	case *externalapi.DomainHash:
		_, err = w.Write(e.ByteSlice())

	case externalapi.DomainTransactionID:
		_, err = w.Write(e.ByteSlice())

	case *externalapi.DomainTransactionID:
		_, err = w.Write(e.ByteSlice())

	default:
		return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
	}
	return errors.WithStack(err)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8, *uint16, *uint32, *uint64, *int64:
		return errors.WithStack(binary.Read(r, binary.LittleEndian, e))

	case *[]byte:
		var length uint64
		err := ReadElement(r, &length)
		if err != nil {
			return err
		}
		if length > MaxVarBytesLength {
			return errors.Wrapf(errMalformed, "byte slice length %d is higher than max allowed %d",
				length, MaxVarBytesLength)
		}
		bytes := make([]byte, length)
		_, err = io.ReadFull(r, bytes)
		if err != nil {
			return errors.WithStack(err)
		}
		*e = bytes
		return nil

	case *externalapi.DomainHash:
		var hashBytes [externalapi.DomainHashSize]byte
		_, err := io.ReadFull(r, hashBytes[:])
		if err != nil {
			return errors.WithStack(err)
		}
		*e = *externalapi.NewDomainHashFromByteArray(&hashBytes)
		return nil

	case *externalapi.DomainTransactionID:
		return ReadElement(r, (*externalapi.DomainHash)(e))
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// ReadElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// IsMalformedError returns whether the error indicates a malformed data source
func IsMalformedError(err error) bool {
	return errors.Is(err, errMalformed)
}
