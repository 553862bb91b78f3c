package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailhub/backend/internal/config"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
	"mailhub/backend/internal/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Mailroom: config.MailroomConfig{
			NumberWidth: 4,
			AutoMailbox: true,
		},
	}
}

func seedClient(t *testing.T, store *memory.Store, name, document string) *domain.Client {
	t.Helper()
	now := time.Now().UTC()
	client := &domain.Client{
		ID:        uuid.NewString(),
		Kind:      domain.KindIndividual,
		Name:      name,
		Document:  document,
		Email:     name + "@example.com",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateClient(client))
	return client
}

func TestMailboxServiceAssign(t *testing.T) {
	t.Run("首个信箱编号为0001", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())
		client := seedClient(t, store, "alice", "52998224725")

		mailbox, err := svc.AssignToClient(client.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "0001", mailbox.Number)
		assert.Equal(t, client.ID, mailbox.ClientID)
		assert.True(t, mailbox.Active)
	})

	t.Run("编号顺序递增", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())

		first := seedClient(t, store, "alice", "52998224725")
		second := seedClient(t, store, "bob", "11144477735")

		m1, err := svc.AssignToClient(first.ID, "")
		require.NoError(t, err)
		m2, err := svc.AssignToClient(second.ID, "")
		require.NoError(t, err)

		assert.Equal(t, "0001", m1.Number)
		assert.Equal(t, "0002", m2.Number)
	})

	t.Run("跳过非数字编号继续递增", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())

		legacy := seedClient(t, store, "legacy", "52998224725")
		require.NoError(t, store.CreateMailbox(&domain.Mailbox{
			ID:        uuid.NewString(),
			Number:    "A-17",
			ClientID:  legacy.ID,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}))

		numbered := seedClient(t, store, "carol", "11144477735")
		require.NoError(t, store.CreateMailbox(&domain.Mailbox{
			ID:        uuid.NewString(),
			Number:    "0042",
			ClientID:  numbered.ID,
			Active:    true,
			CreatedAt: time.Now().UTC(),
		}))

		next := seedClient(t, store, "dave", "12345678909")
		mailbox, err := svc.AssignToClient(next.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "0043", mailbox.Number)
	})

	t.Run("一个客户只能拥有一个信箱", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())
		client := seedClient(t, store, "alice", "52998224725")

		_, err := svc.AssignToClient(client.ID, "")
		require.NoError(t, err)

		_, err = svc.AssignToClient(client.ID, "")
		assert.ErrorIs(t, err, storage.ErrMailboxExists)
	})

	t.Run("客户不存在", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())

		_, err := svc.AssignToClient("missing", "")
		assert.ErrorIs(t, err, storage.ErrClientNotFound)
	})

	t.Run("并发分配编号不冲突", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())

		documents := []string{
			"52998224725", "11144477735", "12345678909",
			"98765432100", "45317828791",
		}
		clients := make([]*domain.Client, len(documents))
		for i, document := range documents {
			clients[i] = seedClient(t, store, "client", document)
		}

		var wg sync.WaitGroup
		errs := make([]error, len(clients))
		for i, client := range clients {
			wg.Add(1)
			go func(i int, clientID string) {
				defer wg.Done()
				_, errs[i] = svc.AssignToClient(clientID, "")
			}(i, client.ID)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		mailboxes, err := svc.List(domain.MailboxFilter{})
		require.NoError(t, err)
		require.Len(t, mailboxes, len(clients))

		seen := make(map[string]bool)
		for _, mailbox := range mailboxes {
			assert.False(t, seen[mailbox.Number], "duplicate number %s", mailbox.Number)
			seen[mailbox.Number] = true
		}
	})
}

func TestMailboxServiceUpdate(t *testing.T) {
	t.Run("更新备注和状态", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())
		client := seedClient(t, store, "alice", "52998224725")

		mailbox, err := svc.AssignToClient(client.ID, "")
		require.NoError(t, err)

		notes := "front desk shelf"
		inactive := false
		updated, err := svc.Update(mailbox.ID, UpdateMailboxInput{
			Notes:  &notes,
			Active: &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "front desk shelf", updated.Notes)
		assert.False(t, updated.Active)

		// 编号不变
		assert.Equal(t, mailbox.Number, updated.Number)
	})

	t.Run("删除信箱级联删除信件", func(t *testing.T) {
		store := memory.NewStore()
		svc := NewMailboxService(store, testConfig())
		client := seedClient(t, store, "alice", "52998224725")

		mailbox, err := svc.AssignToClient(client.ID, "")
		require.NoError(t, err)

		now := time.Now().UTC()
		require.NoError(t, store.CreateCorrespondence(&domain.CorrespondenceItem{
			ID:          uuid.NewString(),
			MailboxID:   mailbox.ID,
			ReceivedAt:  now,
			Description: "bank statement",
			Kind:        domain.KindLetter,
			Status:      domain.StatusReceived,
			CreatedAt:   now,
			UpdatedAt:   now,
		}))

		require.NoError(t, svc.Delete(mailbox.ID))

		items, err := store.ListCorrespondence(domain.CorrespondenceFilter{})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
