package model

// Projections returned by the analytics queries. Counts are always the
// ranking key; names are the tie-break, ascending.

// ArtistSingleCount is an artist with the number of singles they released.
type ArtistSingleCount struct {
	Artist  string `json:"artist"`
	Singles int    `json:"singles"`
}

// GenreSongCount is a genre with the number of songs linked to it.
type GenreSongCount struct {
	Genre string `json:"genre"`
	Songs int    `json:"songs"`
}

// SongRatingCount is a song (title plus owning artist) with its rating count.
type SongRatingCount struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Ratings int    `json:"ratings"`
}

// UserRatingCount is a user with the number of ratings they submitted.
type UserRatingCount struct {
	Username string `json:"username"`
	Ratings  int    `json:"ratings"`
}
