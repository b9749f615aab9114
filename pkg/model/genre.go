package model

// GenreAll disables the genre constraint when filtering.
const GenreAll = "All"

// Genres is the fixed genre enumeration titles draw from.
var Genres = []string{
	"Action",
	"Drama",
	"Thriller",
	"Romance",
	"Comedy",
	"Mystery",
	"Animation",
	"Crime",
	"Adventure",
	"Fantasy",
	"Family",
	"Horror",
	"Sci-Fi",
	"Documentary",
}

// IsGenre reports whether g belongs to the enumeration.
func IsGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}
