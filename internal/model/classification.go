package model

// Classification is the matching engine's verdict for a record.
type Classification string

const (
	Internal     Classification = "Internal"
	Incoming     Classification = "Incoming"
	Outgoing     Classification = "Outgoing"
	Unclassified Classification = "Unclassified"
)

// Valid reports whether c is one of the four known classifications.
func (c Classification) Valid() bool {
	switch c {
	case Internal, Incoming, Outgoing, Unclassified:
		return true
	}
	return false
}
