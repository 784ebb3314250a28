package twitchhls

import (
	"errors"
	"fmt"
	"strings"
)

const playbackAccessTokenQuery = `query PlaybackAccessToken_Template($login: String!, $isLive: Boolean!, $vodID: ID!, $isVod: Boolean!, $playerType: String!) {  streamPlaybackAccessToken(channelName: $login, params: {platform: "web", playerBackend: "mediaplayer", playerType: $playerType}) @include(if: $isLive) {    value    signature   authorization { isForbidden forbiddenReasonCode }   __typename  }  videoPlaybackAccessToken(id: $vodID, params: {platform: "web", playerBackend: "mediaplayer", playerType: $playerType}) @include(if: $isVod) {    value    signature   __typename  }}`

// ErrBadPlaybackToken is returned when the GraphQL response does not carry a
// usable value/signature pair.
var ErrBadPlaybackToken = errors.New("bad playback token")

// NewPlaybackAccessTokenQuery builds the live stream token query for login.
// VOD tokens are never requested.
func NewPlaybackAccessTokenQuery(login string) GraphQLQuery {
	return GraphQLQuery{
		OperationName: "PlaybackAccessToken_Template",
		Query:         playbackAccessTokenQuery,
		Variables: GraphQLVariables{
			IsLive:     true,
			IsVod:      false,
			Login:      login,
			PlayerType: "site",
			VodID:      "",
		},
	}
}

// GraphQLQuery is the JSON body posted to the GraphQL endpoint.
type GraphQLQuery struct {
	OperationName string           `json:"operationName"`
	Query         string           `json:"query"`
	Variables     GraphQLVariables `json:"variables"`
}

// GraphQLVariables are the PlaybackAccessToken_Template arguments.
type GraphQLVariables struct {
	IsLive     bool   `json:"isLive"`
	IsVod      bool   `json:"isVod"`
	Login      string `json:"login"`
	PlayerType string `json:"playerType"`
	VodID      string `json:"vodID"`
}

// GraphQLError is one entry of a response errors array.
type GraphQLError struct {
	Message string `json:"message"`
}

// PlaybackAccessTokenGraphQLResponse is the decoded token response.
type PlaybackAccessTokenGraphQLResponse struct {
	Data   PlaybackAccessTokenGraphQLData `json:"data"`
	Errors []GraphQLError                 `json:"errors"`
}

// PlaybackAccessTokenGraphQLData is the data member of the token response.
type PlaybackAccessTokenGraphQLData struct {
	StreamPlaybackAccessToken *StreamPlaybackAccessToken `json:"streamPlaybackAccessToken"`
}

// StreamPlaybackAccessToken keeps value and signature untyped so that a null
// or non-string field is reported as ErrBadPlaybackToken instead of a decode
// error.
type StreamPlaybackAccessToken struct {
	Signature     any           `json:"signature"`
	Value         any           `json:"value"`
	Authorization Authorization `json:"authorization"`
}

func (r *PlaybackAccessTokenGraphQLResponse) credentials() (*Credentials, error) {
	t := r.Data.StreamPlaybackAccessToken
	if t == nil {
		return nil, r.badToken()
	}

	token, tokenOK := t.Value.(string)
	sig, sigOK := t.Signature.(string)
	if !tokenOK || !sigOK || token == "" || sig == "" {
		return nil, r.badToken()
	}

	return &Credentials{
		Token:         token,
		Sig:           sig,
		Authorization: t.Authorization,
	}, nil
}

func (r *PlaybackAccessTokenGraphQLResponse) badToken() error {
	if len(r.Errors) == 0 {
		return ErrBadPlaybackToken
	}

	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("%w: %s", ErrBadPlaybackToken, strings.Join(msgs, "; "))
}
