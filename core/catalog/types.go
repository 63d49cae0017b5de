package catalog

// Batch item shapes accepted by the loaders. Dates travel as yyyy-mm-dd
// strings and are handed to the store's DATE columns untouched; a malformed
// date is a store failure like any other, not a separate validation class.

// Single is a standalone song: no album, its own release date, and at least
// one genre.
type Single struct {
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Artist      string   `json:"artist"`
	ReleaseDate string   `json:"releaseDate"`
}

// Album is a titled release with an ordered list of song titles. Every song
// in it inherits the album's genre.
type Album struct {
	Title       string   `json:"title"`
	Genre       string   `json:"genre"`
	Artist      string   `json:"artist"`
	ReleaseDate string   `json:"releaseDate"`
	SongTitles  []string `json:"songs"`
}

// Rating is one user's score for a song addressed by (artist, title).
type Rating struct {
	Username string `json:"username"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
	Value    int    `json:"value"`
	Date     string `json:"date"`
}

// Reject keys. A batch call returns the set of keys it did not persist;
// the set is empty when everything loaded. The key carries no reason —
// rejects are reported identically whatever check failed.

// SongKey identifies a rejected single.
type SongKey struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// AlbumKey identifies a rejected album.
type AlbumKey struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// RatingKey identifies a rejected rating.
type RatingKey struct {
	Username string `json:"username"`
	Artist   string `json:"artist"`
	Title    string `json:"title"`
}

// rejectCause classifies why an item was rejected. It never leaves the
// package as a value — reject sets stay key-only — but it drives logging
// and lets tests pin down which path fired.
type rejectCause int

const (
	causeValidation rejectCause = iota
	causeMissingReference
	causeConflict
	causeStoreFailure
)

func (c rejectCause) String() string {
	switch c {
	case causeValidation:
		return "validation"
	case causeMissingReference:
		return "missing_reference"
	case causeConflict:
		return "conflict"
	case causeStoreFailure:
		return "store_failure"
	}
	return "unknown"
}

// BatchFile is the JSON document shape accepted by the load command and the
// object-store batch source. Sections apply in declaration order so ratings
// can reference users and songs loaded by the same file.
type BatchFile struct {
	Singles []Single `json:"singles"`
	Albums  []Album  `json:"albums"`
	Users   []string `json:"users"`
	Ratings []Rating `json:"ratings"`
}

// SectionReport summarizes one section of an applied batch.
type SectionReport struct {
	Section  string `json:"section"`
	Received int    `json:"received"`
	Loaded   int    `json:"loaded"`
	Rejected int    `json:"rejected"`
}

// BatchReport summarizes a whole applied batch file.
type BatchReport struct {
	BatchID  string          `json:"batchId"`
	Sections []SectionReport `json:"sections"`

	RejectedSingles []SongKey   `json:"rejectedSingles,omitempty"`
	RejectedAlbums  []AlbumKey  `json:"rejectedAlbums,omitempty"`
	RejectedUsers   []string    `json:"rejectedUsers,omitempty"`
	RejectedRatings []RatingKey `json:"rejectedRatings,omitempty"`
}
