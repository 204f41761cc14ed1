package domain

import "time"

type Review struct {
	ID           int64
	ListingID    int64
	ReviewerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

func (r Review) Validate() error {
	v := &ValidationError{}
	validateRef(v, "listing", r.ListingID)
	validateText(v, "reviewer_name", r.ReviewerName, MaxShortText)
	v.Merge(ValidateRating(r.Rating))
	validateText(v, "comment", r.Comment, 0)
	return v.OrNil()
}

type ReviewPatch struct {
	ListingID    *int64
	ReviewerName *string
	Rating       *int
	Comment      *string
}

func (p ReviewPatch) Apply(r *Review) {
	if p.ListingID != nil {
		r.ListingID = *p.ListingID
	}
	if p.ReviewerName != nil {
		r.ReviewerName = *p.ReviewerName
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
}
