package redis

import goredis "github.com/redis/go-redis/v9"

// putIfAllAbsentLua returns 0 if any of KEYS exists; otherwise it sets every
// key with a PX expiry of ARGV[1] milliseconds and returns 1. A TTL of 0 or
// less stores the keys without expiry.
const putIfAllAbsentLua = `
for _, key in ipairs(KEYS) do
    if redis.call('EXISTS', key) == 1 then
        return 0
    end
end
local ttl = tonumber(ARGV[1])
for _, key in ipairs(KEYS) do
    if ttl and ttl > 0 then
        redis.call('SET', key, 'default', 'PX', ARGV[1])
    else
        redis.call('SET', key, 'default')
    end
end
return 1
`

// NewPutIfAllAbsentScript prepares the put-if-all-absent script. The handle
// runs via EVALSHA and falls back to EVAL when the server has not seen it yet.
func NewPutIfAllAbsentScript() *goredis.Script {
	return goredis.NewScript(putIfAllAbsentLua)
}
