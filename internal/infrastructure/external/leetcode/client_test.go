package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryItemDTO_Parsing(t *testing.T) {
	jsonData := `{
    "attended": true,
    "trendDirection": "UP",
    "problemsSolved": 3,
    "totalProblems": 4,
    "finishTimeInSeconds": 4523,
    "rating": 1688.45,
    "ranking": 1204,
    "contest": {
        "title": "Weekly Contest 390",
        "startTime": 1711852200
    }
}`

	var item HistoryItemDTO
	err := json.Unmarshal([]byte(jsonData), &item)
	assert.NoError(t, err)

	assert.True(t, item.Attended)
	assert.Equal(t, "UP", item.TrendDirection)
	assert.Equal(t, 3, item.ProblemsSolved)
	assert.Equal(t, 4, item.TotalProblems)
	assert.Equal(t, int64(4523), item.FinishTimeInSeconds)
	assert.Equal(t, 1688.45, item.Rating)
	assert.Equal(t, 1204, item.Ranking)
	assert.Equal(t, "Weekly Contest 390", item.Contest.Title)
	assert.Equal(t, int64(1711852200), item.Contest.StartTime)
}

func TestContestPageDTO_Parsing(t *testing.T) {
	jsonData := `{
    "pageNum": 42,
    "currentPage": 1,
    "totalNum": 415,
    "numPerPage": 10,
    "data": [
        {
            "title": "Weekly Contest 390",
            "titleSlug": "weekly-contest-390",
            "startTime": 1711852200,
            "originStartTime": 1711852200,
            "cardImg": "https://assets.leetcode.com/contest/weekly-contest-390/card_img.png",
            "sponsors": [
                {
                    "name": "LeetCode",
                    "lightLogo": "https://assets.leetcode.com/light.png",
                    "darkLogo": "https://assets.leetcode.com/dark.png"
                }
            ]
        }
    ]
}`

	var page ContestPageDTO
	err := json.Unmarshal([]byte(jsonData), &page)
	assert.NoError(t, err)

	assert.Equal(t, 42, page.PageNum)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 415, page.TotalNum)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "weekly-contest-390", page.Data[0].TitleSlug)
	assert.Len(t, page.Data[0].Sponsors, 1)
	assert.Equal(t, "LeetCode", page.Data[0].Sponsors[0].Name)
}

// newTestClient builds a client pointed at a test server, with timing
// knobs collapsed so tests run fast.
func newTestClient(serverURL string) *Client {
	cfg := DefaultClientConfig(serverURL)
	cfg.RateLimiterConfig = RateLimiterConfig{
		RequestsPerSecond: 1000,
		BurstSize:         1000,
		MinInterval:       0,
		WaitTimeout:       time.Second,
		RetryAfter:        time.Millisecond,
	}
	cfg.MaxRetries = 1
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RetryMaxDelay = time.Millisecond
	return NewClient(cfg)
}

func TestFetchUserContestHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "userContestRankingInfo", req.OperationName)
		assert.Equal(t, "alice", req.Variables["username"])

		fmt.Fprint(w, `{"data":{"userContestRankingHistory":[
            {"attended":true,"trendDirection":"UP","problemsSolved":2,"totalProblems":4,
             "finishTimeInSeconds":3600,"rating":1550,"ranking":800,
             "contest":{"title":"Weekly Contest 1","startTime":1000}}
        ]}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	items, err := client.FetchUserContestHistory(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Weekly Contest 1", items[0].Contest.Title)
	assert.Equal(t, 1550.0, items[0].Rating)
}

func TestFetchUserContestHistory_UnknownUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"That user does not exist."}],"data":{"userContestRankingHistory":null}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	items, err := client.FetchUserContestHistory(context.Background(), "no_such_user")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestFetchAllPastContests_ThreePages(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls++

		pageNo := int(req.Variables["pageNo"].(float64))
		fmt.Fprintf(w, `{"data":{"pastContests":{
            "pageNum":3,"currentPage":%d,"totalNum":3,"numPerPage":1,
            "data":[{"title":"Contest %d","titleSlug":"contest-%d","startTime":%d,"originStartTime":%d,"cardImg":"","sponsors":[]}]
        }}}`, pageNo, pageNo, pageNo, pageNo*1000, pageNo*1000)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	contests, err := client.FetchAllPastContests(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, contests, 3)
	assert.Equal(t, "Contest 1", contests[0].Title)
	assert.Equal(t, "Contest 2", contests[1].Title)
	assert.Equal(t, "Contest 3", contests[2].Title)
}

func TestFetchAllPastContests_StopsOnEmptyPage(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		calls++

		pageNo := int(req.Variables["pageNo"].(float64))
		if pageNo == 2 {
			// An empty item list stops the walk regardless of the
			// reported total page count.
			fmt.Fprint(w, `{"data":{"pastContests":{"pageNum":5,"currentPage":2,"totalNum":5,"numPerPage":1,"data":[]}}}`)
			return
		}
		fmt.Fprintf(w, `{"data":{"pastContests":{
            "pageNum":5,"currentPage":%d,"totalNum":5,"numPerPage":1,
            "data":[{"title":"Contest %d","titleSlug":"contest-%d","startTime":1000,"originStartTime":1000,"cardImg":"","sponsors":[]}]
        }}}`, pageNo, pageNo, pageNo)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	contests, err := client.FetchAllPastContests(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, contests, 1)
	assert.Equal(t, "Contest 1", contests[0].Title)
}

func TestFetchAllPastContests_TruncatesOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		pageNo := int(req.Variables["pageNo"].(float64))
		if pageNo == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `{"data":{"pastContests":{
            "pageNum":3,"currentPage":%d,"totalNum":3,"numPerPage":1,
            "data":[{"title":"Contest %d","titleSlug":"contest-%d","startTime":1000,"originStartTime":1000,"cardImg":"","sponsors":[]}]
        }}}`, pageNo, pageNo, pageNo)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	contests, err := client.FetchAllPastContests(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, contests, 1)
	assert.Equal(t, "Contest 1", contests[0].Title)
}

func TestFetchUserRankingSummary_NeverAttended(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"userContestRanking":null}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	summary, err := client.FetchUserRankingSummary(context.Background(), "fresh_account")
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestDoSingleRequest_BrowserHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, headerUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, headerReferer, r.Header.Get("Referer"))
		assert.Equal(t, headerOrigin, r.Header.Get("Origin"))
		fmt.Fprint(w, `{"data":{"userContestRanking":null}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchUserRankingSummary(context.Background(), "alice")
	require.NoError(t, err)
}
