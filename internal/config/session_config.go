package config

// Store kinds accepted by TALLY_STORE
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type SessionConfig interface {
	GetCookieName() string
	GetStore() string
	GetStoreFile() string
	GetRedisAddr() string
	GetRedisKeyPrefix() string
}

type Session struct {
	CookieName     string `env:"TALLY_COOKIE_NAME,default=TALLY_JWT"`
	Store          string `env:"TALLY_STORE,default=file"`
	StoreFile      string `env:"TALLY_STORE_FILE,default=.tally/cookies.yaml"`
	RedisAddr      string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisKeyPrefix string `env:"TALLY_REDIS_KEY_PREFIX,default=tally:cookies:"`
}

var _ SessionConfig = Session{}

func (s Session) GetCookieName() string {
	return s.CookieName
}

func (s Session) GetStore() string {
	return s.Store
}

func (s Session) GetStoreFile() string {
	return s.StoreFile
}

func (s Session) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Session) GetRedisKeyPrefix() string {
	return s.RedisKeyPrefix
}
