package model

// Proposal is a community-submitted collection idea that members upvote.
type Proposal struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Votes       int    `json:"votes" yaml:"votes"`
}

// DefaultSeed is the list a fresh registry starts with when no seed file exists.
func DefaultSeed() []Proposal {
	return []Proposal{
		{
			ID:          1,
			Name:        "Catbus Graffiti",
			Description: "A colourful set of ordinals featuring catbus doodles in neon.",
			Votes:       12,
		},
		{
			ID:          2,
			Name:        "Nap Revolution Icons",
			Description: "An illustrated collection of cats in various nap positions to celebrate rest as revolt.",
			Votes:       7,
		},
		{
			ID:          3,
			Name:        "Memeconomics Charts",
			Description: "Tongue-in-cheek diagrams and charts about valuing memes over money.",
			Votes:       5,
		},
	}
}
