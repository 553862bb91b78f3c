package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
)

func newClient(name, document string) *domain.Client {
	now := time.Now()
	return &domain.Client{
		ID:        uuid.New().String(),
		Kind:      domain.KindIndividual,
		Name:      name,
		Document:  document,
		Email:     fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newMailbox(clientID, number string) *domain.Mailbox {
	return &domain.Mailbox{
		ID:        uuid.New().String(),
		Number:    number,
		ClientID:  clientID,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

func newItem(mailboxID string, receivedAt time.Time) *domain.CorrespondenceItem {
	return &domain.CorrespondenceItem{
		ID:          uuid.New().String(),
		MailboxID:   mailboxID,
		ReceivedAt:  receivedAt,
		Description: "Letter",
		Kind:        domain.KindLetter,
		Status:      domain.StatusReceived,
		CreatedAt:   receivedAt,
		UpdatedAt:   receivedAt,
	}
}

func TestClientRepository(t *testing.T) {
	t.Run("创建并按税号查询客户", func(t *testing.T) {
		store := NewStore()
		client := newClient("Ana Silva", "52998224725")
		require.NoError(t, store.CreateClient(client))

		found, err := store.GetClientByDocument("52998224725")
		require.NoError(t, err)
		assert.Equal(t, client.ID, found.ID)
	})

	t.Run("税号重复返回冲突", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.CreateClient(newClient("Ana", "52998224725")))

		err := store.CreateClient(newClient("Outra Ana", "52998224725"))
		assert.ErrorIs(t, err, storage.ErrDocumentExists)
	})

	t.Run("更新税号维护唯一索引", func(t *testing.T) {
		store := NewStore()
		client := newClient("Ana", "52998224725")
		require.NoError(t, store.CreateClient(client))

		updated := *client
		updated.Document = "15350946056"
		require.NoError(t, store.UpdateClient(&updated))

		_, err := store.GetClientByDocument("52998224725")
		assert.ErrorIs(t, err, storage.ErrClientNotFound)

		found, err := store.GetClientByDocument("15350946056")
		require.NoError(t, err)
		assert.Equal(t, client.ID, found.ID)
	})

	t.Run("删除客户级联删除信箱信件与合同", func(t *testing.T) {
		store := NewStore()
		client := newClient("Ana", "52998224725")
		require.NoError(t, store.CreateClient(client))

		mailbox := newMailbox(client.ID, "0001")
		require.NoError(t, store.CreateMailbox(mailbox))
		item := newItem(mailbox.ID, time.Now())
		require.NoError(t, store.CreateCorrespondence(item))
		contract := &domain.Contract{
			ID:             uuid.New().String(),
			ClientID:       client.ID,
			Plan:           domain.PlanBasic,
			StartDate:      domain.DateOnly(time.Now()),
			DurationMonths: 12,
			Status:         domain.ContractActive,
		}
		require.NoError(t, store.CreateContract(contract))

		require.NoError(t, store.DeleteClient(client.ID))

		_, err := store.GetMailbox(mailbox.ID)
		assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
		_, err = store.GetCorrespondence(item.ID)
		assert.ErrorIs(t, err, storage.ErrCorrespondenceNotFound)
		_, err = store.GetContract(contract.ID)
		assert.ErrorIs(t, err, storage.ErrContractNotFound)
	})

	t.Run("列表按姓名排序并支持搜索", func(t *testing.T) {
		store := NewStore()
		require.NoError(t, store.CreateClient(newClient("carlos", "11144477735")))
		require.NoError(t, store.CreateClient(newClient("Ana", "52998224725")))
		require.NoError(t, store.CreateClient(newClient("Beto", "15350946056")))

		all, err := store.ListClients(domain.ClientFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Ana", all[0].Name)
		assert.Equal(t, "Beto", all[1].Name)
		assert.Equal(t, "carlos", all[2].Name)

		matched, err := store.ListClients(domain.ClientFilter{Search: "CARL"})
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, "carlos", matched[0].Name)
	})
}

func TestMailboxRepository(t *testing.T) {
	t.Run("每个客户只能有一个信箱", func(t *testing.T) {
		store := NewStore()
		client := newClient("Ana", "52998224725")
		require.NoError(t, store.CreateClient(client))
		require.NoError(t, store.CreateMailbox(newMailbox(client.ID, "0001")))

		err := store.CreateMailbox(newMailbox(client.ID, "0002"))
		assert.ErrorIs(t, err, storage.ErrMailboxExists)
	})

	t.Run("编号重复返回冲突", func(t *testing.T) {
		store := NewStore()
		first := newClient("Ana", "52998224725")
		second := newClient("Beto", "15350946056")
		require.NoError(t, store.CreateClient(first))
		require.NoError(t, store.CreateClient(second))
		require.NoError(t, store.CreateMailbox(newMailbox(first.ID, "0001")))

		err := store.CreateMailbox(newMailbox(second.ID, "0001"))
		assert.ErrorIs(t, err, storage.ErrNumberExists)
	})

	t.Run("更新不改变编号", func(t *testing.T) {
		store := NewStore()
		client := newClient("Ana", "52998224725")
		require.NoError(t, store.CreateClient(client))
		mailbox := newMailbox(client.ID, "0001")
		require.NoError(t, store.CreateMailbox(mailbox))

		changed := *mailbox
		changed.Number = "9999"
		changed.Notes = "updated"
		require.NoError(t, store.UpdateMailbox(&changed))

		found, err := store.GetMailbox(mailbox.ID)
		require.NoError(t, err)
		assert.Equal(t, "0001", found.Number)
		assert.Equal(t, "updated", found.Notes)

		// 入参结构体不被存储回写
		assert.Equal(t, "9999", changed.Number)
	})

	t.Run("读取返回副本", func(t *testing.T) {
		store := NewStore()
		client := newClient("Ana", "52998224725")
		require.NoError(t, store.CreateClient(client))
		mailbox := newMailbox(client.ID, "0001")
		require.NoError(t, store.CreateMailbox(mailbox))

		got, err := store.GetMailbox(mailbox.ID)
		require.NoError(t, err)
		got.Notes = "scribbled"

		again, err := store.GetMailbox(mailbox.ID)
		require.NoError(t, err)
		assert.Empty(t, again.Notes)
	})

	t.Run("最大编号忽略非数字", func(t *testing.T) {
		store := NewStore()
		first := newClient("Ana", "52998224725")
		second := newClient("Beto", "15350946056")
		require.NoError(t, store.CreateClient(first))
		require.NoError(t, store.CreateClient(second))
		require.NoError(t, store.CreateMailbox(newMailbox(first.ID, "A-17")))
		require.NoError(t, store.CreateMailbox(newMailbox(second.ID, "0042")))

		max, err := store.MaxMailboxNumber()
		require.NoError(t, err)
		assert.Equal(t, 42, max)
	})

	t.Run("没有信箱时最大编号为零", func(t *testing.T) {
		store := NewStore()
		max, err := store.MaxMailboxNumber()
		require.NoError(t, err)
		assert.Equal(t, 0, max)
	})
}

func TestCorrespondenceRepository(t *testing.T) {
	setup := func(t *testing.T) (*Store, *domain.Client, *domain.Mailbox) {
		t.Helper()
		store := NewStore()
		client := newClient("Ana", "52998224725")
		require.NoError(t, store.CreateClient(client))
		mailbox := newMailbox(client.ID, "0001")
		require.NoError(t, store.CreateMailbox(mailbox))
		return store, client, mailbox
	}

	t.Run("信箱不存在时拒绝创建", func(t *testing.T) {
		store := NewStore()
		err := store.CreateCorrespondence(newItem("missing", time.Now()))
		assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
	})

	t.Run("列表按收件时间倒序", func(t *testing.T) {
		store, _, mailbox := setup(t)
		now := time.Now()
		older := newItem(mailbox.ID, now.AddDate(0, 0, -3))
		newer := newItem(mailbox.ID, now)
		require.NoError(t, store.CreateCorrespondence(older))
		require.NoError(t, store.CreateCorrespondence(newer))

		items, err := store.ListCorrespondence(domain.CorrespondenceFilter{})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, newer.ID, items[0].ID)
	})

	t.Run("按客户过滤经由其信箱", func(t *testing.T) {
		store, client, mailbox := setup(t)
		require.NoError(t, store.CreateCorrespondence(newItem(mailbox.ID, time.Now())))

		items, err := store.ListCorrespondence(domain.CorrespondenceFilter{ClientID: client.ID})
		require.NoError(t, err)
		assert.Len(t, items, 1)

		// 没有信箱的客户返回空列表
		items, err = store.ListCorrespondence(domain.CorrespondenceFilter{ClientID: "missing"})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("日期范围按日历日比较", func(t *testing.T) {
		store, _, mailbox := setup(t)
		now := time.Now()
		inside := newItem(mailbox.ID, now.AddDate(0, 0, -2))
		outside := newItem(mailbox.ID, now.AddDate(0, 0, -10))
		require.NoError(t, store.CreateCorrespondence(inside))
		require.NoError(t, store.CreateCorrespondence(outside))

		items, err := store.ListCorrespondence(domain.CorrespondenceFilter{
			From: now.AddDate(0, 0, -5),
			To:   now,
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, inside.ID, items[0].ID)
	})
}

func TestDashboardSnapshot(t *testing.T) {
	t.Run("非UTC时区的收件计入今日统计", func(t *testing.T) {
		store := NewStore()
		client := newClient("Ana", "52998224725")
		require.NoError(t, store.CreateClient(client))
		mailbox := newMailbox(client.ID, "0001")
		require.NoError(t, store.CreateMailbox(mailbox))

		// 同一时刻，但时间戳携带 UTC-3 时区
		brt := time.FixedZone("BRT", -3*60*60)
		item := newItem(mailbox.ID, time.Now().In(brt))
		require.NoError(t, store.CreateCorrespondence(item))

		snapshot, err := store.DashboardSnapshot()
		require.NoError(t, err)
		assert.Equal(t, 1, snapshot.CorrespondenceToday)
		assert.Equal(t, 1, snapshot.CorrespondenceLast7d)

		today := domain.DateOnly(time.Now())
		items, err := store.ListCorrespondence(domain.CorrespondenceFilter{From: today, To: today})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestStaffRepository(t *testing.T) {
	store := NewStore()
	user := &domain.StaffUser{
		ID:       uuid.New().String(),
		Username: "Operator",
		Name:     "Operator One",
		Active:   true,
	}
	require.NoError(t, store.CreateStaff(user))

	t.Run("用户名大小写不敏感", func(t *testing.T) {
		found, err := store.GetStaffByUsername("operator")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		err = store.CreateStaff(&domain.StaffUser{ID: uuid.New().String(), Username: "OPERATOR"})
		assert.ErrorIs(t, err, storage.ErrUsernameExists)
	})

	t.Run("记录最后登录时间", func(t *testing.T) {
		require.NoError(t, store.UpdateStaffLastLogin(user.ID))
		found, err := store.GetStaffByID(user.ID)
		require.NoError(t, err)
		require.NotNil(t, found.LastLoginAt)
		assert.WithinDuration(t, time.Now(), *found.LastLoginAt, time.Second)
	})
}
