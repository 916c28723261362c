package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"matka-backend/internal/config"
	"matka-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisService is the document store. Every entity is one JSON document
// under a printf-style key; listings are Redis sets and sorted sets kept
// next to the documents.
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisService{
		client: client,
		ctx:    ctx,
	}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisService) setJSON(key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %v", key, err)
	}
	return s.client.Set(s.ctx, key, data, ttl).Err()
}

func (s *RedisService) getJSON(key string, v interface{}) error {
	data, err := s.client.Get(s.ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), v)
}

func unmarshalString(data string, v interface{}) error {
	return json.Unmarshal([]byte(data), v)
}

// --- Users ---

func (s *RedisService) SaveUser(user *models.User) error {
	user.UpdatedAt = time.Now().Unix()

	if err := s.setJSON(fmt.Sprintf(KeyUser, user.ID), user, 0); err != nil {
		return fmt.Errorf("failed to save user: %v", err)
	}

	mobileKey := fmt.Sprintf(KeyUserByMobile, user.MobileNumber)
	if err := s.client.Set(s.ctx, mobileKey, user.ID, 0).Err(); err != nil {
		return fmt.Errorf("failed to index user mobile: %v", err)
	}

	return s.client.SAdd(s.ctx, KeyUsersAll, user.ID).Err()
}

func (s *RedisService) GetUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.getJSON(fmt.Sprintf(KeyUser, userID), &user); err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("user not found: %s", userID)
		}
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetUserByMobile resolves the mobile index, then loads the document.
// Returns redis.Nil unchanged when no account exists for the number.
func (s *RedisService) GetUserByMobile(mobile string) (*models.User, error) {
	userID, err := s.client.Get(s.ctx, fmt.Sprintf(KeyUserByMobile, mobile)).Result()
	if err != nil {
		return nil, err
	}
	return s.GetUser(userID)
}

func (s *RedisService) ListUserIDs() ([]string, error) {
	ids, err := s.client.SMembers(s.ctx, KeyUsersAll).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %v", err)
	}
	return ids, nil
}

// --- Wallets ---

func (s *RedisService) GetWallet(userID string) (*models.Wallet, error) {
	key := fmt.Sprintf(KeyWallet, userID)

	var wallet models.Wallet
	err := s.getJSON(key, &wallet)
	if err == redis.Nil {
		wallet = models.Wallet{UserID: userID}
		if err := s.SaveWallet(&wallet); err != nil {
			return nil, fmt.Errorf("failed to create wallet: %v", err)
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %v", err)
	}

	return &wallet, nil
}

func (s *RedisService) SaveWallet(wallet *models.Wallet) error {
	return s.setJSON(fmt.Sprintf(KeyWallet, wallet.UserID), wallet, 0)
}

var debitBalanceScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])
	local wagered = ARGV[2] == "true"

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local wallet = cjson.decode(data)

	if wallet.balance < amount then
		return redis.error_reply("insufficient balance")
	end

	wallet.balance = wallet.balance - amount
	if wagered then
		wallet.total_wagered = wallet.total_wagered + amount
	end

	redis.call("SET", key, cjson.encode(wallet))

	return "OK"
`)

// DebitBalance atomically deducts a bid stake or withdrawal from the
// wallet, failing when the balance does not cover it.
func (s *RedisService) DebitBalance(userID string, amount float64, wagered bool) error {
	key := fmt.Sprintf(KeyWallet, userID)
	return debitBalanceScript.Run(s.ctx, s.client, []string{key}, amount, wagered).Err()
}

var creditBalanceScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])
	local won = ARGV[2] == "true"

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local wallet = cjson.decode(data)

	wallet.balance = wallet.balance + amount
	if won then
		wallet.total_won = wallet.total_won + amount
	end

	redis.call("SET", key, cjson.encode(wallet))

	return "OK"
`)

// CreditBalance atomically adds winnings, deposits or refunds.
func (s *RedisService) CreditBalance(userID string, amount float64, won bool) error {
	key := fmt.Sprintf(KeyWallet, userID)
	return creditBalanceScript.Run(s.ctx, s.client, []string{key}, amount, won).Err()
}

var lockBalanceScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local wallet = cjson.decode(data)

	if wallet.balance < amount then
		return redis.error_reply("insufficient balance")
	end

	wallet.balance = wallet.balance - amount
	wallet.locked_balance = wallet.locked_balance + amount

	redis.call("SET", key, cjson.encode(wallet))

	return "OK"
`)

// LockBalance moves funds from balance to locked while a withdrawal
// request is pending.
func (s *RedisService) LockBalance(userID string, amount float64) error {
	key := fmt.Sprintf(KeyWallet, userID)
	return lockBalanceScript.Run(s.ctx, s.client, []string{key}, amount).Err()
}

var releaseBalanceScript = redis.NewScript(`
	local key = KEYS[1]
	local amount = tonumber(ARGV[1])
	local refund = ARGV[2] == "true"

	local data = redis.call("GET", key)
	if not data then
		return redis.error_reply("wallet not found")
	end

	local wallet = cjson.decode(data)

	wallet.locked_balance = wallet.locked_balance - amount
	if wallet.locked_balance < 0 then
		wallet.locked_balance = 0
	end

	if refund then
		wallet.balance = wallet.balance + amount
	end

	redis.call("SET", key, cjson.encode(wallet))

	return "OK"
`)

// ReleaseBalance settles a pending withdrawal: refund=true returns the
// locked amount to the balance (rejection), refund=false burns it
// (approved payout).
func (s *RedisService) ReleaseBalance(userID string, amount float64, refund bool) error {
	key := fmt.Sprintf(KeyWallet, userID)
	return releaseBalanceScript.Run(s.ctx, s.client, []string{key}, amount, refund).Err()
}

// --- Transactions ---

func (s *RedisService) SaveTransaction(tx *models.Transaction) error {
	if err := s.setJSON(fmt.Sprintf(KeyTransaction, tx.ID), tx, TTLTransaction); err != nil {
		return fmt.Errorf("failed to save transaction: %v", err)
	}

	userTxKey := fmt.Sprintf(KeyUserTxns, tx.UserID)
	if err := s.client.ZAdd(s.ctx, userTxKey, redis.Z{
		Score:  float64(tx.CreatedAt),
		Member: tx.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to user transactions: %v", err)
	}

	// Keep only last 500 ledger entries per user
	s.client.ZRemRangeByRank(s.ctx, userTxKey, 0, -501)

	return nil
}

func (s *RedisService) GetUserTransactions(userID string, limit int64) ([]*models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	txIDs, err := s.client.ZRevRange(s.ctx, fmt.Sprintf(KeyUserTxns, userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction IDs: %v", err)
	}

	var transactions []*models.Transaction
	for _, txID := range txIDs {
		var tx models.Transaction
		if err := s.getJSON(fmt.Sprintf(KeyTransaction, txID), &tx); err != nil {
			continue
		}
		transactions = append(transactions, &tx)
	}

	return transactions, nil
}

// --- Test/maintenance cleanup ---

func (s *RedisService) DeleteWallet(userID string) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyWallet, userID)).Err()
}

func (s *RedisService) DeleteResult(gameID, date string, session models.Session) error {
	key := fmt.Sprintf(KeyResult, gameID, date, session)
	s.client.ZRem(s.ctx, fmt.Sprintf(KeyResultsByDate, date), key)
	return s.client.Del(s.ctx, key).Err()
}

func (s *RedisService) DeleteSlip(slip *models.WagerSlip) error {
	date := models.FormatBidDate(slip.CreatedAt)
	s.client.ZRem(s.ctx, fmt.Sprintf(KeyUserSlips, slip.UserID), slip.ID)
	for _, line := range slip.Lines {
		s.client.ZRem(s.ctx, fmt.Sprintf(KeyGameDateSlips, line.GameID, date), slip.ID)
	}
	return s.client.Del(s.ctx, fmt.Sprintf(KeySlip, slip.ID)).Err()
}

func (s *RedisService) DeleteUser(user *models.User) error {
	s.client.SRem(s.ctx, KeyUsersAll, user.ID)
	s.client.Del(s.ctx, fmt.Sprintf(KeyUserByMobile, user.MobileNumber))
	return s.client.Del(s.ctx, fmt.Sprintf(KeyUser, user.ID)).Err()
}

func (s *RedisService) DeleteMarket(market *models.Market) error {
	s.client.SRem(s.ctx, fmt.Sprintf(KeyMarketsAll, market.Kind), market.ID)
	s.client.Del(s.ctx, fmt.Sprintf(KeyMarketByName, market.Kind, normalizeName(market.Name)))
	return s.client.Del(s.ctx, fmt.Sprintf(KeyMarket, market.ID)).Err()
}

func (s *RedisService) DeleteWinnersLedger(gameID, date string, session models.Session) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyWinners, gameID, date, session)).Err()
}

func (s *RedisService) DeleteRateTable(kind models.MarketKind) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyRateTable, kind)).Err()
}

func (s *RedisService) ClearRateLimit(userID, action string) error {
	return s.client.Del(s.ctx, fmt.Sprintf(KeyRateLimit, userID, action)).Err()
}

// --- Rate limiting ---

func (s *RedisService) CheckRateLimit(userID string, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}
