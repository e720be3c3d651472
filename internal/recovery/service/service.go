// Package service implements the security-question challenge protocol:
// per-user RSA key enrollment, encrypted question/answer storage, and
// all-or-nothing multi-answer verification.
package service

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/google/uuid"

	"user-identity-service/internal/recovery/domain"
	"user-identity-service/internal/recovery/repository"
	"user-identity-service/internal/security"
	"user-identity-service/pkg/autherr"
)

// QuestionView is the challenge presentation shape: never the answer.
type QuestionView struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// Answer is one supplied answer in a verification call.
type Answer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// Service runs the challenge protocol over the recovery repository.
type Service struct {
	repo   repository.Repository
	cipher *security.FieldCipher
}

// NewService returns a recovery Service. cipher protects private keys at rest.
func NewService(repo repository.Repository, cipher *security.FieldCipher) *Service {
	return &Service{repo: repo, cipher: cipher}
}

// RegisterKeys enrolls the user: generates an RSA-2048 key pair and persists
// the public half plus the symmetrically encrypted private half. A second
// enrollment fails with AlreadyEnrolled; overwriting would strand every
// answer encrypted under the previous public key.
func (s *Service) RegisterKeys(ctx context.Context, userID string) error {
	existing, err := s.repo.GetKeyPair(ctx, userID)
	if err != nil {
		return autherr.Internal(err)
	}
	if existing != nil {
		return autherr.New(autherr.KindAlreadyEnrolled, "recovery keys already registered")
	}
	privPEM, pubPEM, err := security.GenerateRSAKeyPair()
	if err != nil {
		return autherr.Internal(err)
	}
	privEnc, err := s.cipher.EncryptFieldStrict(privPEM)
	if err != nil {
		return autherr.Internal(err)
	}
	kp := &domain.KeyPair{
		UserID:        userID,
		PublicKeyPEM:  pubPEM,
		PrivateKeyEnc: privEnc,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateKeyPair(ctx, kp); err != nil {
		return autherr.Internal(err)
	}
	return nil
}

// AddQuestion enrolls one question: the answer is encrypted under the
// user's public key and independently fingerprinted with a SHA-256 digest
// of the plaintext. Fails with KeysNotFound when the user has no key pair.
func (s *Service) AddQuestion(ctx context.Context, userID, question, answer string) (*QuestionView, error) {
	if question == "" || answer == "" {
		return nil, autherr.New(autherr.KindInvalidArgument, "question and answer are required")
	}
	kp, err := s.repo.GetKeyPair(ctx, userID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	if kp == nil {
		return nil, autherr.New(autherr.KindKeysNotFound, "recovery keys not registered")
	}
	pub, err := security.ParseRSAPublicKey(kp.PublicKeyPEM)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	ciphertext, err := security.EncryptOAEP(pub, []byte(answer))
	if err != nil {
		return nil, autherr.Internal(err)
	}
	q := &domain.SecurityQuestion{
		ID:        uuid.New().String(),
		UserID:    userID,
		Question:  question,
		AnswerEnc: base64.StdEncoding.EncodeToString(ciphertext),
		AnswerSig: security.Digest(answer),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		return nil, autherr.Internal(err)
	}
	return &QuestionView{ID: q.ID, Question: q.Question}, nil
}

// Questions returns the user's enrolled questions for challenge
// presentation; encrypted answers never leave the service.
func (s *Service) Questions(ctx context.Context, userID string) ([]QuestionView, error) {
	list, err := s.repo.ListQuestions(ctx, userID)
	if err != nil {
		return nil, autherr.Internal(err)
	}
	out := make([]QuestionView, len(list))
	for i, q := range list {
		out[i] = QuestionView{ID: q.ID, Question: q.Question}
	}
	return out, nil
}

// VerifyAnswers checks every supplied answer against its stored row. The
// call is all-or-nothing: the first failure aborts the whole verification,
// and no partial success is reported. Each answer must decrypt to an exact
// plaintext match (AnswerMismatch) and the recomputed digest must agree
// with the stored one (SignatureMismatch).
func (s *Service) VerifyAnswers(ctx context.Context, userID string, answers []Answer) error {
	if len(answers) == 0 {
		return autherr.New(autherr.KindInvalidArgument, "no answers supplied")
	}
	kp, err := s.repo.GetKeyPair(ctx, userID)
	if err != nil {
		return autherr.Internal(err)
	}
	if kp == nil {
		return autherr.New(autherr.KindKeysNotFound, "recovery keys not registered")
	}
	// The private key path is strict: returning a tampered key as-is would
	// only surface later as garbage decryptions.
	privPEM, err := s.cipher.DecryptFieldStrict(kp.PrivateKeyEnc)
	if err != nil {
		return autherr.Internal(err)
	}
	priv, err := security.ParseRSAPrivateKey(privPEM)
	if err != nil {
		return autherr.Internal(err)
	}

	stored, err := s.repo.ListQuestions(ctx, userID)
	if err != nil {
		return autherr.Internal(err)
	}
	byID := make(map[string]*domain.SecurityQuestion, len(stored))
	for _, q := range stored {
		byID[q.ID] = q
	}

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return autherr.New(autherr.KindInvalidQuestionID, "unknown question id")
		}
		ciphertext, err := base64.StdEncoding.DecodeString(q.AnswerEnc)
		if err != nil {
			return autherr.Internal(err)
		}
		plaintext, err := security.DecryptOAEP(priv, ciphertext)
		if err != nil {
			return autherr.Internal(err)
		}
		if string(plaintext) != a.Answer {
			return autherr.New(autherr.KindAnswerMismatch, "answer does not match")
		}
		if !security.DigestEqual(string(plaintext), q.AnswerSig) {
			return autherr.New(autherr.KindSignatureMismatch, "answer integrity signature mismatch")
		}
	}
	return nil
}
