package usecases_session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wazmeow/internal/domain/session"
	sessionUC "wazmeow/internal/usecases/session"
)

func TestDeleteUseCase(t *testing.T) {
	t.Run("should delete disconnected session successfully", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockSessionMgr := new(MockSessionManager)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewDeleteUseCase(mockRepo, mockSessionMgr, mockLogger)

		// Create a disconnected session
		sess := session.NewSession("user-1", "", session.SourceWeb)

		req := sessionUC.DeleteRequest{
			SessionID: sess.ID(),
		}

		ctx := context.Background()

		// Mock expectations
		mockRepo.On("GetByID", ctx, sess.ID()).Return(sess, nil)
		mockSessionMgr.On("PerformCompleteUserCleanup", ctx, sess.ID()).Return(nil)
		mockRepo.On("Delete", ctx, sess.ID()).Return(nil)
		mockLogger.On("InfoWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, sess.ID(), result.SessionID)
		assert.NotEmpty(t, result.Message)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockSessionMgr.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should delete connected session when forced", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockSessionMgr := new(MockSessionManager)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewDeleteUseCase(mockRepo, mockSessionMgr, mockLogger)

		// Create a connected session
		sess := session.NewSession("user-2", "", session.SourceWeb)
		err := sess.Connect("test@s.whatsapp.net")
		require.NoError(t, err)

		req := sessionUC.DeleteRequest{
			SessionID: sess.ID(),
			Force:     true, // Force delete connected session
		}

		ctx := context.Background()

		// Mock expectations
		mockRepo.On("GetByID", ctx, sess.ID()).Return(sess, nil)
		mockSessionMgr.On("PerformCompleteUserCleanup", ctx, sess.ID()).Return(nil)
		mockRepo.On("Delete", ctx, sess.ID()).Return(nil)
		mockLogger.On("InfoWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, callErr := useCase.Execute(ctx, req)

		// Assert
		assert.NoError(t, callErr)
		assert.NotNil(t, result)
		assert.Equal(t, sess.ID(), result.SessionID)
		assert.NotEmpty(t, result.Message)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockSessionMgr.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should reject deleting a connected session without force", func(t *testing.T) {
		mockRepo := new(MockSessionRepository)
		mockSessionMgr := new(MockSessionManager)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewDeleteUseCase(mockRepo, mockSessionMgr, mockLogger)

		sess := session.NewSession("user-3", "", session.SourceWeb)
		err := sess.Connect("test@s.whatsapp.net")
		require.NoError(t, err)

		req := sessionUC.DeleteRequest{SessionID: sess.ID()}
		ctx := context.Background()

		mockRepo.On("GetByID", ctx, sess.ID()).Return(sess, nil)
		mockLogger.On("WarnWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		result, callErr := useCase.Execute(ctx, req)

		assert.Error(t, callErr)
		assert.Equal(t, session.ErrSessionInvalidState, callErr)
		assert.Nil(t, result)

		mockRepo.AssertExpectations(t)
		mockSessionMgr.AssertNotCalled(t, "PerformCompleteUserCleanup")
		mockRepo.AssertNotCalled(t, "Delete")
		mockLogger.AssertExpectations(t)
	})

	t.Run("should fail when session not found", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockSessionMgr := new(MockSessionManager)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewDeleteUseCase(mockRepo, mockSessionMgr, mockLogger)

		sessionID := session.NewSessionID("missing-user")
		req := sessionUC.DeleteRequest{
			SessionID: sessionID,
		}

		ctx := context.Background()

		// Mock expectations
		mockRepo.On("GetByID", ctx, sessionID).Return(nil, session.ErrSessionNotFound)
		mockLogger.On("ErrorWithError", mock.AnythingOfType("string"), session.ErrSessionNotFound, mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.Error(t, err)
		assert.Equal(t, session.ErrSessionNotFound, err)
		assert.Nil(t, result)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
		mockSessionMgr.AssertNotCalled(t, "PerformCompleteUserCleanup")
		mockRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("should fail when repository delete fails", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockSessionMgr := new(MockSessionManager)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewDeleteUseCase(mockRepo, mockSessionMgr, mockLogger)

		// Create a disconnected session
		sess := session.NewSession("user-4", "", session.SourceWeb)

		req := sessionUC.DeleteRequest{
			SessionID: sess.ID(),
		}

		ctx := context.Background()
		deleteErr := assert.AnError

		// Mock expectations
		mockRepo.On("GetByID", ctx, sess.ID()).Return(sess, nil)
		mockSessionMgr.On("PerformCompleteUserCleanup", ctx, sess.ID()).Return(nil)
		mockRepo.On("Delete", ctx, sess.ID()).Return(deleteErr)
		mockLogger.On("ErrorWithError", mock.AnythingOfType("string"), deleteErr, mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.Error(t, err)
		assert.Equal(t, deleteErr, err)
		assert.Nil(t, result)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockSessionMgr.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should proceed with deletion despite cleanup error", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockSessionMgr := new(MockSessionManager)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewDeleteUseCase(mockRepo, mockSessionMgr, mockLogger)

		// Create a connected session
		sess := session.NewSession("user-5", "", session.SourceWeb)
		err := sess.Connect("test@s.whatsapp.net")
		require.NoError(t, err)

		req := sessionUC.DeleteRequest{
			SessionID: sess.ID(),
			Force:     true, // Force delete connected session
		}

		ctx := context.Background()
		cleanupErr := assert.AnError

		// Mock expectations
		mockRepo.On("GetByID", ctx, sess.ID()).Return(sess, nil)
		mockSessionMgr.On("PerformCompleteUserCleanup", ctx, sess.ID()).Return(cleanupErr)
		mockLogger.On("ErrorWithError", mock.AnythingOfType("string"), cleanupErr, mock.AnythingOfType("logger.Fields")).Return()
		mockRepo.On("Delete", ctx, sess.ID()).Return(nil)
		mockLogger.On("InfoWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, callErr := useCase.Execute(ctx, req)

		// Assert
		assert.NoError(t, callErr) // Should succeed despite cleanup error
		assert.NotNil(t, result)
		assert.Equal(t, sess.ID(), result.SessionID)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockSessionMgr.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})

	t.Run("should delete session while connecting", func(t *testing.T) {
		// Arrange
		mockRepo := new(MockSessionRepository)
		mockSessionMgr := new(MockSessionManager)
		mockLogger := new(MockLogger)

		useCase := sessionUC.NewDeleteUseCase(mockRepo, mockSessionMgr, mockLogger)

		// Create a connecting session
		sess := session.NewSession("user-6", "", session.SourceWeb)
		sess.SetConnecting()

		req := sessionUC.DeleteRequest{
			SessionID: sess.ID(),
		}

		ctx := context.Background()

		// Mock expectations - not StatusConnected so no force required
		mockRepo.On("GetByID", ctx, sess.ID()).Return(sess, nil)
		mockSessionMgr.On("PerformCompleteUserCleanup", ctx, sess.ID()).Return(nil)
		mockRepo.On("Delete", ctx, sess.ID()).Return(nil)
		mockLogger.On("InfoWithFields", mock.AnythingOfType("string"), mock.AnythingOfType("logger.Fields")).Return()

		// Act
		result, err := useCase.Execute(ctx, req)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, sess.ID(), result.SessionID)

		// Verify mocks
		mockRepo.AssertExpectations(t)
		mockSessionMgr.AssertExpectations(t)
		mockLogger.AssertExpectations(t)
	})
}
