package model

// ID is the server-assigned entity identifier. Zero means "no entity".
type ID uint32

// NoID is the zero ID, used for empty target/relation slots.
const NoID ID = 0
