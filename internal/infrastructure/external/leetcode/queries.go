package leetcode

// GraphQL documents for the LeetCode endpoint. The endpoint is unofficial;
// these queries mirror what the leetcode.com frontend sends.

const opUserContestHistory = "userContestRankingInfo"

const queryUserContestHistory = `
query userContestRankingInfo($username: String!) {
  userContestRankingHistory(username: $username) {
    attended
    trendDirection
    problemsSolved
    totalProblems
    finishTimeInSeconds
    rating
    ranking
    contest {
      title
      startTime
    }
  }
}`

const opUserContestRanking = "userContestRanking"

const queryUserContestRanking = `
query userContestRanking($username: String!) {
  userContestRanking(username: $username) {
    attendedContestsCount
    rating
    globalRanking
    totalParticipants
    topPercentage
  }
}`

const opPastContests = "pastContests"

const queryPastContests = `
query pastContests($pageNo: Int, $numPerPage: Int) {
  pastContests(pageNo: $pageNo, numPerPage: $numPerPage) {
    pageNum
    currentPage
    totalNum
    numPerPage
    data {
      title
      titleSlug
      startTime
      originStartTime
      cardImg
      sponsors {
        name
        lightLogo
        darkLogo
      }
    }
  }
}`

// graphqlRequest is the POST body the endpoint expects.
type graphqlRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}
