package usecases_session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"wazmeow/internal/domain/session"
	sessionUC "wazmeow/internal/usecases/session"
)

func TestResolveUseCase(t *testing.T) {
	t.Run("should resolve session by session id successfully", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewResolveUseCase(mockRepo, mockLogger)

		sess := session.NewSession("user-1", "", session.SourceWeb)

		req := sessionUC.ResolveRequest{
			Identifier: sess.ID().String(),
		}

		ctx := context.Background()

		// Mock expectations
		mockRepo.On("GetByID", ctx, sess.ID()).Return(sess, nil)
		mockLogger.On("InfoWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, sess, result.Session)
		assert.Equal(t, "session_id", result.IdentifierType)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should fall back to user id when identifier is not a session id", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewResolveUseCase(mockRepo, mockLogger)

		sess := session.NewSession("user-2", "", session.SourceWeb)

		req := sessionUC.ResolveRequest{
			Identifier: "user-2",
		}

		ctx := context.Background()

		// Mock expectations
		mockRepo.On("GetByUserID", ctx, "user-2").Return(sess, nil)
		mockLogger.On("InfoWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, sess, result.Session)
		assert.Equal(t, "user_id", result.IdentifierType)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should fail with empty identifier", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewResolveUseCase(mockRepo, mockLogger)

		req := sessionUC.ResolveRequest{Identifier: ""}
		ctx := context.Background()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, result)

		// Verify mocks
		mockRepo.AssertNotCalled(t, "GetByID")
		mockRepo.AssertNotCalled(t, "GetByUserID")
	})

	t.Run("should fail when no session matches either lookup", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewResolveUseCase(mockRepo, mockLogger)

		req := sessionUC.ResolveRequest{Identifier: "nonexistent-user"}
		ctx := context.Background()

		// Mock expectations - not a valid session id, falls through to user id lookup
		mockRepo.On("GetByUserID", ctx, "nonexistent-user").Return(nil, session.ErrSessionNotFound)
		mockLogger.On("WarnWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.Nil(t, result)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should fail when repository returns a non-not-found error for user id lookup", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewResolveUseCase(mockRepo, mockLogger)

		req := sessionUC.ResolveRequest{Identifier: "user-5"}
		ctx := context.Background()
		repoErr := assert.AnError

		// Mock expectations
		mockRepo.On("GetByUserID", ctx, "user-5").Return(nil, repoErr)
		mockLogger.On("ErrorWithError", mock.AnythingOfType("string"), repoErr, mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.Error(t, err)
		assert.Equal(t, repoErr, err)
		assert.Nil(t, result)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should propagate a non-not-found error from the session id lookup", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewResolveUseCase(mockRepo, mockLogger)

		sessionID := session.NewSessionID("user-6")
		req := sessionUC.ResolveRequest{Identifier: sessionID.String()}
		ctx := context.Background()
		repoErr := assert.AnError

		// Mock expectations
		mockRepo.On("GetByID", ctx, sessionID).Return(nil, repoErr)
		mockLogger.On("ErrorWithError", mock.AnythingOfType("string"), repoErr, mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.Error(t, err)
		assert.Equal(t, repoErr, err)
		assert.Nil(t, result)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})
}
