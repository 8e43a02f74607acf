package entity

// CategoryRequest - тело POST/PUT /categories. ParentID = nil делает категорию корневой.
type CategoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	ParentID *int64 `json:"parent_id" validate:"omitempty,gte=0"`
}

type CreateFeatureRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Icon         string `json:"icon" validate:"omitempty,max=32"`
	DisplayOrder int    `json:"display_order"`
}

// UpdateFeatureRequest - частичное обновление, nil поля не меняются
type UpdateFeatureRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Icon         *string `json:"icon" validate:"omitempty,max=32"`
	DisplayOrder *int    `json:"display_order"`
}

// ProductInput - нормализованные данные товара после разбора формы.
// Для коллекций действует правило: nil - не менять, пустой срез - очистить.
type ProductInput struct {
	Title            *string  `json:"title" validate:"omitempty,max=200"`
	ShortDescription *string  `json:"short_description" validate:"omitempty,max=500"`
	LongDescription  *string  `json:"long_description" validate:"omitempty,max=10000"`
	CategoryID       *int64   `json:"category_id" validate:"omitempty,gte=0"`
	Segment          *string  `json:"segment" validate:"omitempty,max=16"`
	MainImage        *string  `json:"main_image_path" validate:"omitempty,max=1024"`
	AdditionalImages []string `json:"additional_image_paths" validate:"omitempty,dive,required,max=1024"`
	FeatureIDs       []int64  `json:"features" validate:"omitempty,dive,gt=0"`
}

// ProductFilter - фильтр публичного списка товаров
type ProductFilter struct {
	Segment    *Segment
	CategoryID *int64
}

// ProductChanges - что именно переписывается в транзакции обновления
type ProductChanges struct {
	MainImage        *string
	AdditionalImages *[]string
	FeatureIDs       *[]int64
}

// LoginRequest - вход администратора
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// QuizAnswers - ответы на вопросы квиза подбора аппарата.
// hearing_loss: mild|moderate|severe, environment: quiet|mixed|noisy,
// connectivity: none|phone|streaming, budget: low|medium|high.
type QuizAnswers struct {
	HearingLoss  string `json:"hearing_loss" validate:"required"`
	Environment  string `json:"environment" validate:"required"`
	Connectivity string `json:"connectivity" validate:"required"`
	Budget       string `json:"budget" validate:"required"`
}

type QuizResult struct {
	Segment  Segment         `json:"segment"`
	Score    int             `json:"score"`
	Products []ProductDetail `json:"products"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ProductListResponse struct {
	Products []ProductDetail `json:"products"`
	Total    int             `json:"total"`
}

type CategoryListResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

type CategoryTreeResponse struct {
	Categories []CategoryNode `json:"categories"`
}

type FeatureListResponse struct {
	Features []Feature `json:"features"`
	Total    int       `json:"total"`
}

type FeatureDeleteResponse struct {
	Message             string `json:"message"`
	RemovedAssociations int64  `json:"removed_associations"`
}
