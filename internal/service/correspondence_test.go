package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
	"mailhub/backend/internal/storage/memory"
)

func setupMailbox(t *testing.T, store *memory.Store) *domain.Mailbox {
	t.Helper()
	client := seedClient(t, store, "alice", "52998224725")
	mailboxes := NewMailboxService(store, testConfig())
	mailbox, err := mailboxes.AssignToClient(client.ID, "")
	require.NoError(t, err)
	return mailbox
}

func TestCorrespondenceRegister(t *testing.T) {
	t.Run("登记信件初始状态为已收件", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		mailbox := setupMailbox(t, store)

		item, err := svc.Register(RegisterInput{
			MailboxID:    mailbox.ID,
			Description:  "bank statement",
			Kind:         domain.KindLetter,
			Sender:       "Banco Central",
			TrackingCode: "BR123456789",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReceived, item.Status)
		assert.Nil(t, item.PickedUpAt)
		assert.WithinDuration(t, time.Now(), item.ReceivedAt, 2*time.Second)
	})

	t.Run("可指定收件时间", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		mailbox := setupMailbox(t, store)

		receivedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
		item, err := svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "package",
			Kind:        domain.KindPackage,
			ReceivedAt:  &receivedAt,
		})
		require.NoError(t, err)
		assert.Equal(t, receivedAt, item.ReceivedAt)
	})

	t.Run("信箱不存在", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)

		_, err := svc.Register(RegisterInput{
			MailboxID:   "missing",
			Description: "letter",
			Kind:        domain.KindLetter,
		})
		assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
	})

	t.Run("类型未知", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		mailbox := setupMailbox(t, store)

		_, err := svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "letter",
			Kind:        "POSTCARD",
		})
		require.Error(t, err)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "kind", validationErr.Field)
	})

	t.Run("描述必填", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		mailbox := setupMailbox(t, store)

		_, err := svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "  ",
			Kind:        domain.KindLetter,
		})
		assert.Error(t, err)
	})
}

func TestCorrespondencePickup(t *testing.T) {
	register := func(t *testing.T, store *memory.Store, svc *CorrespondenceService) *domain.CorrespondenceItem {
		t.Helper()
		mailbox := setupMailbox(t, store)
		item, err := svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "registered letter",
			Kind:        domain.KindLetter,
		})
		require.NoError(t, err)
		return item
	}

	t.Run("取件登记", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		item := register(t, store, svc)

		updated, err := svc.MarkPickedUp(item.ID, PickupInput{
			PickedUpBy:       "Maria Silva",
			PickupDocumentID: "52998224725",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPickedUp, updated.Status)
		require.NotNil(t, updated.PickedUpAt)
		assert.Equal(t, "Maria Silva", updated.PickedUpBy)
		assert.Equal(t, "52998224725", updated.PickupDocumentID)
	})

	t.Run("重复取件报错", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		item := register(t, store, svc)

		_, err := svc.MarkPickedUp(item.ID, PickupInput{})
		require.NoError(t, err)

		_, err = svc.MarkPickedUp(item.ID, PickupInput{})
		assert.ErrorIs(t, err, ErrAlreadyPickedUp)
	})

	t.Run("撤销取件清空取件信息", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		item := register(t, store, svc)

		_, err := svc.MarkPickedUp(item.ID, PickupInput{
			PickedUpBy:       "Maria Silva",
			PickupDocumentID: "52998224725",
		})
		require.NoError(t, err)

		reverted, err := svc.RevertPickup(item.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReceived, reverted.Status)
		assert.Nil(t, reverted.PickedUpAt)
		assert.Empty(t, reverted.PickedUpBy)
		assert.Empty(t, reverted.PickupDocumentID)
	})

	t.Run("未取件不能撤销", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		item := register(t, store, svc)

		_, err := svc.RevertPickup(item.ID)
		assert.ErrorIs(t, err, ErrNotPickedUp)
	})

	t.Run("退回是终态", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		item := register(t, store, svc)

		_, err := svc.MarkReturned(item.ID, "recipient moved away")
		require.NoError(t, err)

		_, err = svc.MarkPickedUp(item.ID, PickupInput{})
		assert.ErrorIs(t, err, ErrAlreadyReturned)

		_, err = svc.MarkReturned(item.ID, "")
		assert.ErrorIs(t, err, ErrAlreadyReturned)
	})

	t.Run("已取件不能退回", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		item := register(t, store, svc)

		_, err := svc.MarkPickedUp(item.ID, PickupInput{})
		require.NoError(t, err)

		_, err = svc.MarkReturned(item.ID, "")
		assert.ErrorIs(t, err, ErrAlreadyPickedUp)
	})
}

func TestCorrespondenceQueries(t *testing.T) {
	t.Run("待取件列表", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		mailbox := setupMailbox(t, store)

		first, err := svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "letter one",
			Kind:        domain.KindLetter,
		})
		require.NoError(t, err)

		_, err = svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "letter two",
			Kind:        domain.KindLetter,
		})
		require.NoError(t, err)

		_, err = svc.MarkPickedUp(first.ID, PickupInput{})
		require.NoError(t, err)

		pending, err := svc.Pending()
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "letter two", pending[0].Description)
	})

	t.Run("今日收件列表", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		mailbox := setupMailbox(t, store)

		yesterday := time.Now().AddDate(0, 0, -1)
		_, err := svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "old letter",
			Kind:        domain.KindLetter,
			ReceivedAt:  &yesterday,
		})
		require.NoError(t, err)

		_, err = svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "fresh letter",
			Kind:        domain.KindLetter,
		})
		require.NoError(t, err)

		today, err := svc.Today()
		require.NoError(t, err)
		require.Len(t, today, 1)
		assert.Equal(t, "fresh letter", today[0].Description)
	})

	t.Run("按收件时间倒序", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewCorrespondenceService(store, nil)
		mailbox := setupMailbox(t, store)

		older := time.Now().Add(-2 * time.Hour)
		newer := time.Now().Add(-1 * time.Hour)

		_, err := svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "older",
			Kind:        domain.KindLetter,
			ReceivedAt:  &older,
		})
		require.NoError(t, err)

		_, err = svc.Register(RegisterInput{
			MailboxID:   mailbox.ID,
			Description: "newer",
			Kind:        domain.KindLetter,
			ReceivedAt:  &newer,
		})
		require.NoError(t, err)

		items, err := svc.List(domain.CorrespondenceFilter{})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "newer", items[0].Description)
		assert.Equal(t, "older", items[1].Description)
	})
}
