package db

// Repositories provides access to all database repositories
type Repositories struct {
	Media  *MediaRepository
	Strips *StripRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Media:  NewMediaRepository(db),
		Strips: NewStripRepository(db),
	}
}
