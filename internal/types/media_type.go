package types

// MediaType tags the six catalogs. MediaTypeAll is reserved for the
// per-user aggregate roll-up row and cross-catalog achievements.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
	MediaTypeAnime MediaType = "anime"
	MediaTypeManga MediaType = "manga"
	MediaTypeBook  MediaType = "book"
	MediaTypeGame  MediaType = "game"
	MediaTypeAll   MediaType = "all"
)

var AllMediaTypes = []MediaType{
	MediaTypeMovie,
	MediaTypeTV,
	MediaTypeAnime,
	MediaTypeManga,
	MediaTypeBook,
	MediaTypeGame,
}

func (m MediaType) Valid() bool {
	switch m {
	case MediaTypeMovie, MediaTypeTV, MediaTypeAnime, MediaTypeManga, MediaTypeBook, MediaTypeGame:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCurrent   Status = "current"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusDropped   Status = "dropped"
	StatusRepeating Status = "repeating"
)

type UpdateKind string

const (
	UpdateKindAdd      UpdateKind = "add"
	UpdateKindStatus   UpdateKind = "status"
	UpdateKindProgress UpdateKind = "progress"
	UpdateKindRating   UpdateKind = "rating"
	UpdateKindRedo     UpdateKind = "redo"
	UpdateKindFavorite UpdateKind = "favorite"
	UpdateKindComment  UpdateKind = "comment"
	UpdateKindRemove   UpdateKind = "remove"
)
