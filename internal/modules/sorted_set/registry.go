package sorted_set

import (
	"github.com/lattice-kv/zsetcore/internal"
	"github.com/lattice-kv/zsetcore/internal/constants"
)

// Commands enumerates every command this package implements, for a
// keyspace or startup log line to report - mirroring the teacher's
// Commands() registry function, minus the RESP handler wiring it carried.
func Commands() []internal.Command {
	write := []string{constants.SortedSetCategory, constants.WriteCategory, constants.FastCategory}
	read := []string{constants.SortedSetCategory, constants.ReadCategory, constants.FastCategory}

	return []internal.Command{
		{Name: "ZADD", Module: constants.SortedSetModule, Categories: write, Description: "Add or update members with scores."},
		{Name: "ZINCRBY", Module: constants.SortedSetModule, Categories: write, Description: "Increment a member's score."},
		{Name: "ZREM", Module: constants.SortedSetModule, Categories: write, Description: "Remove members."},
		{Name: "ZCARD", Module: constants.SortedSetModule, Categories: read, Description: "Count members."},
		{Name: "ZSCORE", Module: constants.SortedSetModule, Categories: read, Description: "Get a member's score."},
		{Name: "ZCOUNT", Module: constants.SortedSetModule, Categories: read, Description: "Count members in a score range."},
		{Name: "ZRANGE", Module: constants.SortedSetModule, Categories: read, Description: "Members by ascending rank."},
		{Name: "ZREVRANGE", Module: constants.SortedSetModule, Categories: read, Description: "Members by descending rank."},
		{Name: "ZRANGEBYSCORE", Module: constants.SortedSetModule, Categories: read, Description: "Members in a score range, ascending."},
		{Name: "ZREVRANGEBYSCORE", Module: constants.SortedSetModule, Categories: read, Description: "Members in a score range, descending."},
		{Name: "ZRANGEBYLEX", Module: constants.SortedSetModule, Categories: read, Description: "Members in a lexical range."},
		{Name: "ZRANK", Module: constants.SortedSetModule, Categories: read, Description: "A member's ascending rank."},
		{Name: "ZREVRANK", Module: constants.SortedSetModule, Categories: read, Description: "A member's descending rank."},
		{Name: "ZPOPMAX", Module: constants.SortedSetModule, Categories: write, Description: "Remove and return the highest-scoring members."},
	}
}
