package models

// Category of a deed. The order of Categories is the order used in listings.
type Category string

const (
	CategoryEnvironment Category = "ENVIRONMENT"
	CategoryCommunity   Category = "COMMUNITY"
	CategoryAnimals     Category = "ANIMALS"
	CategoryEducation   Category = "EDUCATION"
	CategoryHealth      Category = "HEALTH"
	CategoryKindness    Category = "KINDNESS"
	CategoryDonation    Category = "DONATION"
	CategoryOther       Category = "OTHER"
)

var Categories = []Category{
	CategoryEnvironment,
	CategoryCommunity,
	CategoryAnimals,
	CategoryEducation,
	CategoryHealth,
	CategoryKindness,
	CategoryDonation,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ReactionType is one of the fixed reactions a user can leave on a deed.
type ReactionType string

const (
	ReactionInspired ReactionType = "INSPIRED"
	ReactionHeart    ReactionType = "HEART"
	ReactionClap     ReactionType = "CLAP"
	ReactionStrong   ReactionType = "STRONG"
	ReactionHug      ReactionType = "HUG"
)

// ReactionTypes is the canonical order for reaction tallies.
var ReactionTypes = []ReactionType{
	ReactionInspired,
	ReactionHeart,
	ReactionClap,
	ReactionStrong,
	ReactionHug,
}

func (r ReactionType) Valid() bool {
	for _, known := range ReactionTypes {
		if r == known {
			return true
		}
	}
	return false
}

type DeedType string

const (
	DeedTypeBrag         DeedType = "BRAG"
	DeedTypeCallToAction DeedType = "CALL_TO_ACTION"
)

func (t DeedType) Valid() bool {
	return t == DeedTypeBrag || t == DeedTypeCallToAction
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
