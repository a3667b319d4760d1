package models

type PushToken struct {
	Push_Token_ID int    `json:"pushTokenId" goqu:"skipinsert" db:"push_token_id"`
	User_ID       int    `json:"userId" db:"user_id"`
	Push_Token    string `json:"pushToken" db:"push_token"`
	Platform      string `json:"platform" db:"platform"`
}

type PushTokenCreate struct {
	Push_Token string `json:"pushToken" binding:"required"`
	Platform   string `json:"platform"`
}
