package dto

type InterestResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type InterestsListResponse struct {
	Items []InterestResponse `json:"items"`
}

type ReplaceInterestsRequest struct {
	InterestIDs []int64 `json:"interest_ids"`
}
