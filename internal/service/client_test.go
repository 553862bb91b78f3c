package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailhub/backend/internal/config"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
	"mailhub/backend/internal/storage/memory"
)

func newClientService(store *memory.Store, cfg *config.Config) *ClientService {
	mailboxes := NewMailboxService(store, cfg)
	return NewClientService(store, mailboxes, cfg, nil, zap.NewNop())
}

func TestClientServiceCreate(t *testing.T) {
	t.Run("登记自然人客户并自动分配信箱", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "529.982.247-25",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)
		assert.True(t, client.Active)

		// 税号归一化为纯数字
		assert.Equal(t, "52998224725", client.Document)
		assert.Equal(t, "529.982.247-25", client.FormattedDocument())

		mailbox, err := store.GetMailboxByClientID(client.ID)
		require.NoError(t, err)
		assert.Equal(t, "0001", mailbox.Number)
		assert.Equal(t, "mailbox created automatically for Maria Silva", mailbox.Notes)
	})

	t.Run("登记法人客户", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindOrganization,
			Name:     "Acme Ltda",
			Document: "11.222.333/0001-81",
			Email:    "contact@acme.example",
		})
		require.NoError(t, err)
		assert.Equal(t, "11222333000181", client.Document)
		assert.Equal(t, "11.222.333/0001-81", client.FormattedDocument())
	})

	t.Run("关闭自动分配时不创建信箱", func(t *testing.T) {
		store := memory.NewStore()
		cfg := testConfig()
		cfg.Mailroom.AutoMailbox = false
		svc := newClientService(store, cfg)

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)

		_, err = store.GetMailboxByClientID(client.ID)
		assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
	})

	t.Run("自然人税号位数错误", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		_, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "123456",
			Email:    "maria@example.com",
		})
		require.Error(t, err)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "document", validationErr.Field)
	})

	t.Run("法人税号位数错误", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		_, err := svc.Create(CreateClientInput{
			Kind:     domain.KindOrganization,
			Name:     "Acme Ltda",
			Document: "52998224725", // 11 位，法人需要 14 位
			Email:    "contact@acme.example",
		})
		require.Error(t, err)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "document", validationErr.Field)
	})

	t.Run("税号重复", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		_, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)

		_, err = svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Other Maria",
			Document: "529.982.247-25", // 同一税号，不同标点
			Email:    "other@example.com",
		})
		assert.ErrorIs(t, err, storage.ErrDocumentExists)
	})

	t.Run("客户类型未知", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		_, err := svc.Create(CreateClientInput{
			Kind:     "COMPANY",
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.Error(t, err)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "kind", validationErr.Field)
	})
}

func TestClientServiceUpdate(t *testing.T) {
	t.Run("修改税号时重新校验", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)

		bad := "123"
		_, err = svc.Update(client.ID, UpdateClientInput{Document: &bad})
		require.Error(t, err)

		good := "111.444.777-35"
		updated, err := svc.Update(client.ID, UpdateClientInput{Document: &good})
		require.NoError(t, err)
		assert.Equal(t, "11144477735", updated.Document)
	})

	t.Run("校验失败不留下部分更新", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)

		bad := "123"
		newName := "Renamed"
		_, err = svc.Update(client.ID, UpdateClientInput{Name: &newName, Document: &bad})
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)

		// 存储中的记录保持原样，税号索引仍指向原税号
		stored, err := store.GetClient(client.ID)
		require.NoError(t, err)
		assert.Equal(t, "52998224725", stored.Document)
		assert.Equal(t, "Maria Silva", stored.Name)

		byDocument, err := store.GetClientByDocument("52998224725")
		require.NoError(t, err)
		assert.Equal(t, client.ID, byDocument.ID)
	})

	t.Run("变更客户类型时税号必须匹配新类型", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)

		organization := domain.KindOrganization
		_, err = svc.Update(client.ID, UpdateClientInput{Kind: &organization})
		assert.Error(t, err) // 11 位税号不满足法人 14 位要求
	})

	t.Run("停用客户", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)

		inactive := false
		updated, err := svc.Update(client.ID, UpdateClientInput{Active: &inactive})
		require.NoError(t, err)
		assert.False(t, updated.Active)
	})
}

func TestClientServiceList(t *testing.T) {
	t.Run("按姓名升序并支持搜索", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		for _, c := range []CreateClientInput{
			{Kind: domain.KindIndividual, Name: "Carlos", Document: "52998224725", Email: "carlos@example.com"},
			{Kind: domain.KindIndividual, Name: "Ana", Document: "11144477735", Email: "ana@example.com"},
			{Kind: domain.KindOrganization, Name: "Beta Ltda", Document: "11222333000181", Email: "beta@example.com"},
		} {
			_, err := svc.Create(c)
			require.NoError(t, err)
		}

		all, err := svc.List(domain.ClientFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Ana", all[0].Name)
		assert.Equal(t, "Beta Ltda", all[1].Name)
		assert.Equal(t, "Carlos", all[2].Name)

		kind := domain.KindOrganization
		organizations, err := svc.List(domain.ClientFilter{Kind: kind})
		require.NoError(t, err)
		require.Len(t, organizations, 1)
		assert.Equal(t, "Beta Ltda", organizations[0].Name)

		found, err := svc.List(domain.ClientFilter{Search: "carlos"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Carlos", found[0].Name)
	})
}

func TestClientServiceDelete(t *testing.T) {
	t.Run("删除客户级联删除信箱", func(t *testing.T) {
		store := memory.NewStore()
		svc := newClientService(store, testConfig())

		client, err := svc.Create(CreateClientInput{
			Kind:     domain.KindIndividual,
			Name:     "Maria Silva",
			Document: "52998224725",
			Email:    "maria@example.com",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(client.ID))

		_, err = store.GetClient(client.ID)
		assert.ErrorIs(t, err, storage.ErrClientNotFound)

		mailboxes, err := store.ListMailboxes(domain.MailboxFilter{})
		require.NoError(t, err)
		assert.Empty(t, mailboxes)
	})
}
