package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage/memory"
)

func TestDashboardSnapshot(t *testing.T) {
	store := memory.NewStore()
	cfg := testConfig()
	mailboxes := NewMailboxService(store, cfg)
	clients := NewClientService(store, mailboxes, cfg, nil, zap.NewNop())
	correspondence := NewCorrespondenceService(store, nil)
	contracts := NewContractService(store, nil)
	dashboard := NewDashboardService(store)

	active, err := clients.Create(CreateClientInput{
		Kind:     domain.KindIndividual,
		Name:     "Maria Silva",
		Document: "52998224725",
		Email:    "maria@example.com",
	})
	require.NoError(t, err)

	inactive, err := clients.Create(CreateClientInput{
		Kind:     domain.KindIndividual,
		Name:     "Pedro Santos",
		Document: "11144477735",
		Email:    "pedro@example.com",
	})
	require.NoError(t, err)
	off := false
	_, err = clients.Update(inactive.ID, UpdateClientInput{Active: &off})
	require.NoError(t, err)

	mailbox, err := mailboxes.GetByClient(active.ID)
	require.NoError(t, err)

	// 今天的信件：一件待取、一件已取
	pending, err := correspondence.Register(RegisterInput{
		MailboxID:   mailbox.ID,
		Description: "letter",
		Kind:        domain.KindLetter,
	})
	require.NoError(t, err)
	_ = pending

	picked, err := correspondence.Register(RegisterInput{
		MailboxID:   mailbox.ID,
		Description: "package",
		Kind:        domain.KindPackage,
	})
	require.NoError(t, err)
	_, err = correspondence.MarkPickedUp(picked.ID, PickupInput{})
	require.NoError(t, err)

	// 十天前的信件，不计入今天和最近七天
	old := time.Now().AddDate(0, 0, -10)
	_, err = correspondence.Register(RegisterInput{
		MailboxID:   mailbox.ID,
		Description: "old letter",
		Kind:        domain.KindLetter,
		ReceivedAt:  &old,
	})
	require.NoError(t, err)

	// 三天前的信件，计入最近七天
	recent := time.Now().AddDate(0, 0, -3)
	_, err = correspondence.Register(RegisterInput{
		MailboxID:   mailbox.ID,
		Description: "recent letter",
		Kind:        domain.KindLetter,
		ReceivedAt:  &recent,
	})
	require.NoError(t, err)

	_, err = contracts.Create(CreateContractInput{
		ClientID:       active.ID,
		Plan:           domain.PlanBasic,
		MonthlyValue:   decimal.RequireFromString("49.90"),
		StartDate:      time.Now(),
		DurationMonths: 12,
	})
	require.NoError(t, err)

	snapshot, err := dashboard.Snapshot()
	require.NoError(t, err)

	// 看板口径：总客户数与活跃客户数一致
	assert.Equal(t, 1, snapshot.ActiveClients)
	assert.Equal(t, snapshot.ActiveClients, snapshot.TotalClients)

	assert.Equal(t, 2, snapshot.ActiveMailboxes)
	assert.Equal(t, 3, snapshot.PendingCorrespondence)
	assert.Equal(t, 2, snapshot.CorrespondenceToday)
	assert.Equal(t, 3, snapshot.CorrespondenceLast7d)
	assert.Equal(t, 1, snapshot.ActiveContracts)

	assert.Equal(t, 3, snapshot.ByKind[domain.KindLetter])
	assert.Equal(t, 1, snapshot.ByKind[domain.KindPackage])
	assert.Equal(t, 3, snapshot.ByStatus[domain.StatusReceived])
	assert.Equal(t, 1, snapshot.ByStatus[domain.StatusPickedUp])
}
