package model

// Predicates accepted when listing followings.
// A follow is a directed edge observer -> target, unique per pair, never to oneself.
const (
	FollowPredicateFollowers = "followers"
	FollowPredicateFollowing = "following"
)
