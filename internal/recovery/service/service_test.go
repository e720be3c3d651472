package service

import (
	"context"
	"sync"
	"testing"

	"user-identity-service/internal/recovery/domain"
	"user-identity-service/internal/security"
	"user-identity-service/pkg/autherr"
)

type memRecoveryRepo struct {
	mu        sync.Mutex
	keys      map[string]*domain.KeyPair
	questions map[string][]*domain.SecurityQuestion
}

func newMemRepo() *memRecoveryRepo {
	return &memRecoveryRepo{
		keys:      map[string]*domain.KeyPair{},
		questions: map[string][]*domain.SecurityQuestion{},
	}
}

func (r *memRecoveryRepo) GetKeyPair(ctx context.Context, userID string) (*domain.KeyPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[userID], nil
}

func (r *memRecoveryRepo) CreateKeyPair(ctx context.Context, kp *domain.KeyPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[kp.UserID] = kp
	return nil
}

func (r *memRecoveryRepo) CreateQuestion(ctx context.Context, q *domain.SecurityQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[q.UserID] = append(r.questions[q.UserID], q)
	return nil
}

func (r *memRecoveryRepo) ListQuestions(ctx context.Context, userID string) ([]*domain.SecurityQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questions[userID], nil
}

func newTestService(t *testing.T) (*Service, *memRecoveryRepo) {
	t.Helper()
	cipher, err := security.NewFieldCipher([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewFieldCipher: %v", err)
	}
	repo := newMemRepo()
	return NewService(repo, cipher), repo
}

func TestRegisterKeys(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := svc.RegisterKeys(ctx, "42"); err != nil {
		t.Fatalf("RegisterKeys: %v", err)
	}
	kp := repo.keys["42"]
	if kp == nil {
		t.Fatal("key pair not persisted")
	}
	if kp.PrivateKeyEnc == "" || kp.PublicKeyPEM == "" {
		t.Fatal("key pair incomplete")
	}
	// Private key must not be stored as plain PEM.
	if _, err := security.ParseRSAPrivateKey(kp.PrivateKeyEnc); err == nil {
		t.Error("private key stored unencrypted")
	}

	if err := svc.RegisterKeys(ctx, "42"); !autherr.IsKind(err, autherr.KindAlreadyEnrolled) {
		t.Errorf("second enrollment: want KindAlreadyEnrolled, got %v", err)
	}
}

func TestAddQuestion_RequiresKeys(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddQuestion(context.Background(), "42", "pet name?", "Rex")
	if !autherr.IsKind(err, autherr.KindKeysNotFound) {
		t.Errorf("want KindKeysNotFound, got %v", err)
	}
}

func TestQuestions_NeverExposeAnswers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if err := svc.RegisterKeys(ctx, "42"); err != nil {
		t.Fatalf("RegisterKeys: %v", err)
	}
	if _, err := svc.AddQuestion(ctx, "42", "pet name?", "Rex"); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	qs, err := svc.Questions(ctx, "42")
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1", len(qs))
	}
	if qs[0].ID == "" || qs[0].Question != "pet name?" {
		t.Errorf("question view: %+v", qs[0])
	}
}

func TestVerifyAnswers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if err := svc.RegisterKeys(ctx, "42"); err != nil {
		t.Fatalf("RegisterKeys: %v", err)
	}
	q1, err := svc.AddQuestion(ctx, "42", "pet name?", "Rex")
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	q2, err := svc.AddQuestion(ctx, "42", "first street?", "Elm")
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	// Correct answers pass in either order.
	if err := svc.VerifyAnswers(ctx, "42", []Answer{
		{QuestionID: q2.ID, Answer: "Elm"},
		{QuestionID: q1.ID, Answer: "Rex"},
	}); err != nil {
		t.Errorf("VerifyAnswers(correct): %v", err)
	}

	// Case mismatch is a mismatch.
	err = svc.VerifyAnswers(ctx, "42", []Answer{{QuestionID: q1.ID, Answer: "rex"}})
	if !autherr.IsKind(err, autherr.KindAnswerMismatch) {
		t.Errorf("case mismatch: want KindAnswerMismatch, got %v", err)
	}

	// One wrong answer fails the whole call.
	err = svc.VerifyAnswers(ctx, "42", []Answer{
		{QuestionID: q1.ID, Answer: "Rex"},
		{QuestionID: q2.ID, Answer: "Oak"},
	})
	if !autherr.IsKind(err, autherr.KindAnswerMismatch) {
		t.Errorf("partial failure: want KindAnswerMismatch, got %v", err)
	}

	// Unknown question id.
	err = svc.VerifyAnswers(ctx, "42", []Answer{{QuestionID: "not-an-id", Answer: "Rex"}})
	if !autherr.IsKind(err, autherr.KindInvalidQuestionID) {
		t.Errorf("unknown id: want KindInvalidQuestionID, got %v", err)
	}

	// Empty answer set is rejected.
	err = svc.VerifyAnswers(ctx, "42", nil)
	if !autherr.IsKind(err, autherr.KindInvalidArgument) {
		t.Errorf("empty answers: want KindInvalidArgument, got %v", err)
	}
}

func TestVerifyAnswers_SignatureMismatch(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	if err := svc.RegisterKeys(ctx, "42"); err != nil {
		t.Fatalf("RegisterKeys: %v", err)
	}
	q, err := svc.AddQuestion(ctx, "42", "pet name?", "Rex")
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	// Tamper with the stored digest: the ciphertext still decrypts to the
	// right plaintext, but the integrity signature no longer agrees.
	repo.mu.Lock()
	repo.questions["42"][0].AnswerSig = security.Digest("something else")
	repo.mu.Unlock()

	err = svc.VerifyAnswers(ctx, "42", []Answer{{QuestionID: q.ID, Answer: "Rex"}})
	if !autherr.IsKind(err, autherr.KindSignatureMismatch) {
		t.Errorf("tampered signature: want KindSignatureMismatch, got %v", err)
	}
}

func TestVerifyAnswers_RequiresKeys(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.VerifyAnswers(context.Background(), "nobody", []Answer{{QuestionID: "x", Answer: "y"}})
	if !autherr.IsKind(err, autherr.KindKeysNotFound) {
		t.Errorf("want KindKeysNotFound, got %v", err)
	}
}
