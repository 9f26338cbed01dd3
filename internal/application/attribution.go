package application

import "github.com/ericfisherdev/reviewgate/internal/domain/model"

// attributeReviewer maps a comment author and body to the reviewer that
// posted it. Reviewer-B signatures are tried first because both reviewers
// may post through the same account and B's marker is the narrower one.
func attributeReviewer(author, body string, signatures []model.ReviewerSignature) model.Reviewer {
	for _, want := range []model.Reviewer{model.ReviewerB, model.ReviewerA} {
		for _, sig := range signatures {
			if sig.Reviewer == want && sig.Matches(author, body) {
				return want
			}
		}
	}
	return model.ReviewerHuman
}
