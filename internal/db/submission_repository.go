package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	"formcraft-backend-go/internal/models"
)

const submissionsCollection = "submissions"

// firestoreSubmissionRepository implements SubmissionRepository using the
// submissions subcollection of each form.
type firestoreSubmissionRepository struct {
	client *firestore.Client
}

// NewFirestoreSubmissionRepository creates a new submission repository.
func NewFirestoreSubmissionRepository(client *firestore.Client) SubmissionRepository {
	return &firestoreSubmissionRepository{client: client}
}

func (r *firestoreSubmissionRepository) collection(formID string) *firestore.CollectionRef {
	return r.client.Collection(formsCollection).Doc(formID).Collection(submissionsCollection)
}

// Create writes a submission with a server timestamp and returns its ID.
func (r *firestoreSubmissionRepository) Create(ctx context.Context, formID string, submission *models.Submission) (string, error) {
	if formID == "" {
		return "", errors.New("formID cannot be empty for Create operation")
	}
	submission.RespondentEmail = strings.ToLower(strings.TrimSpace(submission.RespondentEmail))
	docRef := r.collection(formID).NewDoc()
	wr, err := docRef.Create(ctx, submission)
	if err != nil {
		return "", fmt.Errorf("failed to create submission for form '%s': %w", formID, err)
	}
	submission.ID = docRef.ID
	submission.FormID = formID
	submission.SubmittedAt = wr.UpdateTime
	return docRef.ID, nil
}

// ListByForm returns all submissions of a form, newest first.
func (r *firestoreSubmissionRepository) ListByForm(ctx context.Context, formID string) ([]*models.Submission, error) {
	iter := r.collection(formID).OrderBy("submittedAt", firestore.Desc).Documents(ctx)
	subs, err := decodeAll(iter, func(s *models.Submission, id string) {
		s.ID = id
		s.FormID = formID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for form '%s': %w", formID, err)
	}
	return subs, nil
}

// GetByID retrieves one submission.
func (r *firestoreSubmissionRepository) GetByID(ctx context.Context, formID, submissionID string) (*models.Submission, error) {
	if formID == "" || submissionID == "" {
		return nil, errors.New("formID and submissionID are required for GetByID operation")
	}
	docSnap, err := r.collection(formID).Doc(submissionID).Get(ctx)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("submission '%s'", submissionID))
	}
	var sub models.Submission
	if err := docSnap.DataTo(&sub); err != nil {
		return nil, fmt.Errorf("failed to decode submission '%s': %w", submissionID, err)
	}
	sub.ID = docSnap.Ref.ID
	sub.FormID = formID
	return &sub, nil
}

// Delete removes one submission.
func (r *firestoreSubmissionRepository) Delete(ctx context.Context, formID, submissionID string) error {
	if _, err := r.collection(formID).Doc(submissionID).Delete(ctx, firestore.Exists); err != nil {
		return translateError(err, fmt.Sprintf("submission '%s'", submissionID))
	}
	return nil
}

// DeleteAllForForm removes every submission of a form through a BulkWriter and
// returns how many were deleted.
func (r *firestoreSubmissionRepository) DeleteAllForForm(ctx context.Context, formID string) (int, error) {
	refs, err := r.collection(formID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list submissions of form '%s' for deletion: %w", formID, err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to queue deletion of submission '%s': %w", ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, fmt.Errorf("failed to delete submissions of form '%s': %w", formID, err)
		}
		deleted++
	}
	return deleted, nil
}

// ExistsForRespondent reports whether a signed-in uid or an email already
// answered the form. Empty identifiers are ignored.
func (r *firestoreSubmissionRepository) ExistsForRespondent(ctx context.Context, formID, uid, email string) (bool, error) {
	col := r.collection(formID)
	if uid != "" {
		found, err := exists(ctx, col.Where("respondentUid", "==", uid))
		if err != nil {
			return false, fmt.Errorf("failed to check respondent uid: %w", err)
		}
		if found {
			return true, nil
		}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		found, err := exists(ctx, col.Where("respondentEmail", "==", email))
		if err != nil {
			return false, fmt.Errorf("failed to check respondent email: %w", err)
		}
		return found, nil
	}
	return false, nil
}

// Count returns the number of submissions across all forms.
func (r *firestoreSubmissionRepository) Count(ctx context.Context) (int64, error) {
	n, err := countQuery(ctx, r.client.CollectionGroup(submissionsCollection).Query)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}
