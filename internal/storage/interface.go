package storage

// Uploader delivers export artifacts to a remote destination
type Uploader interface {
	Upload(name string, data []byte) error
}
