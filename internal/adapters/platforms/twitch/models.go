package twitch

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type usersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Login string `json:"login"`
	} `json:"data"`
}

type channelsResponse struct {
	Data []struct {
		BroadcasterID    string   `json:"broadcaster_id"`
		BroadcasterLogin string   `json:"broadcaster_login"`
		GameName         string   `json:"game_name"`
		Title            string   `json:"title"`
		Tags             []string `json:"tags"`
	} `json:"data"`
}
