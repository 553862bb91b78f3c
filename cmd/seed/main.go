package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mailhub/backend/internal/config"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/storage"
	"mailhub/backend/internal/storage/memory"
	"mailhub/backend/internal/storage/postgres"
)

// 固定样本数据，用于生成可信的测试记录。
var (
	firstNames = []string{
		"Ana", "Bruno", "Carla", "Diego", "Elena", "Felipe", "Gabriela",
		"Hugo", "Isabela", "João", "Larissa", "Marcos", "Natália", "Otávio",
		"Paula", "Rafael", "Sofia", "Thiago", "Valentina", "William",
	}
	lastNames = []string{
		"Almeida", "Barbosa", "Cardoso", "Dias", "Ferreira", "Gomes",
		"Lima", "Martins", "Nunes", "Oliveira", "Pereira", "Ribeiro",
		"Santos", "Silva", "Souza", "Teixeira",
	}
	companyNames = []string{
		"Tech Solutions", "Digital Systems", "Smart Business", "Future Corp",
		"Global Trade", "Prime Services", "Elite Consultoria", "Nova Era",
		"Inovação Total", "Estratégia Plus", "Mercado Líder", "Qualidade First",
		"Excelência Pro", "Vanguarda Tech", "Pioneira Digital", "Moderna Gestão",
	}
	companySuffixes = []string{"Ltda", "S.A.", "EIRELI", "ME", "EPP"}

	retailSenders  = []string{"Amazon", "Mercado Livre", "Magazine Luiza", "Casas Bahia", "Americanas", "Shopee"}
	bankSenders    = []string{"Banco do Brasil", "Caixa Econômica", "Itaú", "Bradesco", "Santander", "Nubank"}
	govSenders     = []string{"Receita Federal", "INSS", "Prefeitura Municipal", "Detran", "Cartório"}
	utilitySenders = []string{"Conta de Luz", "Conta de Água", "Internet/TV", "Plano de Saúde"}

	individualKinds = []domain.CorrespondenceKind{
		domain.KindPackage, domain.KindParcel, domain.KindExpressMail,
		domain.KindStandardMail, domain.KindLetter,
	}
	organizationKinds = []domain.CorrespondenceKind{
		domain.KindDocument, domain.KindDeliveryNotice, domain.KindLetter,
	}

	planValues = map[domain.ContractPlan]decimal.Decimal{
		domain.PlanBasic:      decimal.RequireFromString("49.90"),
		domain.PlanPremium:    decimal.RequireFromString("129.90"),
		domain.PlanEnterprise: decimal.RequireFromString("299.90"),
	}
)

func main() {
	numClients := flag.Int("clients", 100, "要生成的客户数量")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.Database.Type {
	case "":
		store = memory.NewStore()
		fmt.Println("警告: 未配置数据库，数据仅写入内存后即丢弃")
	case "mysql":
		store, err = postgres.NewMySQLStore(cfg.Database.DSN)
	case "postgres", "postgresql":
		store, err = postgres.NewStore(cfg.Database.DSN)
	default:
		fmt.Printf("Unsupported database type: %s\n", cfg.Database.Type)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	seeder := &seeder{store: store, rng: rng, numberWidth: cfg.Mailroom.NumberWidth}

	fmt.Printf("🚀 生成 %d 个客户及完整关联数据...\n", *numClients)

	clients, err := seeder.seedClients(*numClients)
	if err != nil {
		fmt.Printf("Failed to seed clients: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ %d 个客户已创建\n", len(clients))

	totalItems, err := seeder.seedMailboxesAndCorrespondence(clients)
	if err != nil {
		fmt.Printf("Failed to seed correspondence: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ %d 件信件已创建\n", totalItems)

	totalContracts, err := seeder.seedContracts(clients)
	if err != nil {
		fmt.Printf("Failed to seed contracts: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ %d 份合同已创建\n", totalContracts)

	snapshot, err := store.DashboardSnapshot()
	if err != nil {
		fmt.Printf("Failed to read dashboard snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\n📊 当前统计:")
	fmt.Printf("  活跃客户:   %d\n", snapshot.ActiveClients)
	fmt.Printf("  活跃信箱:   %d\n", snapshot.ActiveMailboxes)
	fmt.Printf("  待取信件:   %d\n", snapshot.PendingCorrespondence)
	fmt.Printf("  活跃合同:   %d\n", snapshot.ActiveContracts)
}

type seeder struct {
	store       storage.Store
	rng         *rand.Rand
	numberWidth int
	nextNumber  int
}

// seedClients 生成客户，70% 个人 / 30% 机构。
func (s *seeder) seedClients(total int) ([]domain.Client, error) {
	clients := make([]domain.Client, 0, total)
	usedDocuments := make(map[string]bool)

	numIndividuals := total * 7 / 10
	for i := 0; i < total; i++ {
		var client domain.Client
		if i < numIndividuals {
			client = domain.Client{
				Kind:     domain.KindIndividual,
				Name:     s.pick(firstNames) + " " + s.pick(lastNames),
				Document: s.uniqueDigits(domain.IndividualDocumentDigits, usedDocuments),
				Active:   s.rng.Float64() < 0.95,
			}
		} else {
			client = domain.Client{
				Kind:     domain.KindOrganization,
				Name:     s.pick(companyNames) + " " + s.pick(companySuffixes),
				Document: s.uniqueDigits(domain.OrganizationDocumentDigits, usedDocuments),
				Active:   s.rng.Float64() < 0.90,
			}
		}

		client.ID = uuid.New().String()
		client.Email = fmt.Sprintf("%s%d@example.com",
			strings.ToLower(strings.Fields(client.Name)[0]), i)
		client.Phone = s.phone()
		client.Address = fmt.Sprintf("Rua %s, %d", s.pick(lastNames), s.rng.Intn(2000)+1)
		now := time.Now()
		client.CreatedAt = now
		client.UpdatedAt = now

		if err := s.store.CreateClient(&client); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, nil
}

// seedMailboxesAndCorrespondence 为每个客户创建信箱及随机信件。
func (s *seeder) seedMailboxesAndCorrespondence(clients []domain.Client) (int, error) {
	now := time.Now()
	total := 0

	for _, client := range clients {
		s.nextNumber++
		mailbox := &domain.Mailbox{
			ID:        uuid.New().String(),
			Number:    fmt.Sprintf("%0*d", s.numberWidth, s.nextNumber),
			ClientID:  client.ID,
			Notes:     fmt.Sprintf("mailbox created automatically for %s", client.Name),
			Active:    client.Active,
			CreatedAt: now,
		}
		if err := s.store.CreateMailbox(mailbox); err != nil {
			return total, err
		}

		var count int
		switch {
		case !client.Active:
			count = s.rng.Intn(5) + 1
		case client.Kind == domain.KindOrganization:
			count = s.rng.Intn(18) + 8
		default:
			count = s.rng.Intn(13) + 3
		}

		for i := 0; i < count; i++ {
			item := s.randomItem(client, mailbox.ID, now)
			if err := s.store.CreateCorrespondence(item); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

// randomItem 生成单件信件，收件越久远取件概率越高。
func (s *seeder) randomItem(client domain.Client, mailboxID string, now time.Time) *domain.CorrespondenceItem {
	var daysAgo int
	switch roll := s.rng.Float64(); {
	case roll < 0.3:
		daysAgo = s.rng.Intn(7) + 1
	case roll < 0.65:
		daysAgo = s.rng.Intn(23) + 8
	case roll < 0.85:
		daysAgo = s.rng.Intn(60) + 31
	default:
		daysAgo = s.rng.Intn(275) + 91
	}
	receivedAt := now.AddDate(0, 0, -daysAgo)

	var kind domain.CorrespondenceKind
	var sender string
	if client.Kind == domain.KindOrganization {
		kind = s.pickKind(organizationKinds)
		sender = s.pick(append(append([]string{}, govSenders...), bankSenders...))
	} else {
		kind = s.pickKind(individualKinds)
		sender = s.pick(append(append([]string{}, retailSenders...), utilitySenders...))
	}

	item := &domain.CorrespondenceItem{
		ID:          uuid.New().String(),
		MailboxID:   mailboxID,
		ReceivedAt:  receivedAt,
		Description: fmt.Sprintf("%s de %s", kind.Label(), sender),
		Kind:        kind,
		Status:      domain.StatusReceived,
		Sender:      sender,
		CreatedAt:   receivedAt,
		UpdatedAt:   receivedAt,
	}

	if kind != domain.KindLetter && kind != domain.KindDocument && s.rng.Float64() < 0.7 {
		item.TrackingCode = fmt.Sprintf("BR%09dBR", s.rng.Intn(900000000)+100000000)
	}

	var pickupChance float64
	switch {
	case daysAgo > 60:
		pickupChance = 0.85
	case daysAgo > 30:
		pickupChance = 0.75
	case daysAgo > 15:
		pickupChance = 0.60
	case daysAgo > 7:
		pickupChance = 0.40
	default:
		pickupChance = 0.20
	}

	if s.rng.Float64() < pickupChance {
		pickupDays := s.rng.Intn(daysAgo) + 1
		if pickupDays > 10 {
			pickupDays = 10
		}
		pickedUpAt := receivedAt.AddDate(0, 0, pickupDays)
		if pickedUpAt.After(now) {
			pickedUpAt = now.Add(-time.Hour)
		}
		item.Status = domain.StatusPickedUp
		item.PickedUpAt = &pickedUpAt
		item.PickedUpBy = client.Name
		item.PickupDocumentID = client.Document
	}
	return item
}

// seedContracts 为约 60% 的客户生成合同。
func (s *seeder) seedContracts(clients []domain.Client) (int, error) {
	today := domain.DateOnly(time.Now())
	created := 0

	for _, client := range clients {
		if s.rng.Float64() >= 0.6 {
			continue
		}

		var plan domain.ContractPlan
		var duration int
		if client.Kind == domain.KindOrganization {
			plan = s.weightedPlan(20, 40)
			duration = s.pickInt([]int{12, 24, 36}, []int{30, 50, 20})
		} else {
			plan = s.weightedPlan(60, 30)
			duration = s.pickInt([]int{6, 12, 24}, []int{40, 45, 15})
		}

		monthsAgo := s.rng.Intn(24) + 1
		startDate := today.AddDate(0, -monthsAgo, 0)

		status := domain.ContractActive
		expiry := domain.AddMonthsClamped(startDate, duration)
		switch {
		case expiry.Before(today) && s.rng.Float64() >= 0.8:
			status = domain.ContractExpired
		case !client.Active:
			status = domain.ContractCancelled
		}

		// 月费在基准价上下 10% 内浮动
		base := planValues[plan]
		variation := decimal.NewFromFloat(0.9 + s.rng.Float64()*0.2)
		value := base.Mul(variation).Round(2)

		now := time.Now()
		contract := &domain.Contract{
			ID:             uuid.New().String(),
			ClientID:       client.ID,
			Plan:           plan,
			MonthlyValue:   value,
			StartDate:      startDate,
			DurationMonths: duration,
			Status:         status,
			Notes:          fmt.Sprintf("Contrato %s", plan.Label()),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.store.CreateContract(contract); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *seeder) pick(items []string) string {
	return items[s.rng.Intn(len(items))]
}

func (s *seeder) pickKind(kinds []domain.CorrespondenceKind) domain.CorrespondenceKind {
	return kinds[s.rng.Intn(len(kinds))]
}

func (s *seeder) pickInt(values, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := s.rng.Intn(total)
	for i, w := range weights {
		if roll < w {
			return values[i]
		}
		roll -= w
	}
	return values[len(values)-1]
}

func (s *seeder) weightedPlan(basicWeight, premiumWeight int) domain.ContractPlan {
	roll := s.rng.Intn(100)
	switch {
	case roll < basicWeight:
		return domain.PlanBasic
	case roll < basicWeight+premiumWeight:
		return domain.PlanPremium
	default:
		return domain.PlanEnterprise
	}
}

func (s *seeder) uniqueDigits(length int, used map[string]bool) string {
	for {
		var b strings.Builder
		for i := 0; i < length; i++ {
			fmt.Fprintf(&b, "%d", s.rng.Intn(10))
		}
		document := b.String()
		if !used[document] {
			used[document] = true
			return document
		}
	}
}

func (s *seeder) phone() string {
	ddds := []int{11, 21, 31, 41, 51, 61, 71, 81, 85, 91}
	ddd := ddds[s.rng.Intn(len(ddds))]
	number := s.rng.Intn(90000000) + 910000000
	return fmt.Sprintf("(%02d) %d", ddd, number)
}
