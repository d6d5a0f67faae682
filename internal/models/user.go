package models

// User 代表系统中的用户。
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"` // 不暴露密码哈希
	Email        string `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	Nickname     string `gorm:"type:varchar(100)" json:"nickname,omitempty"`
	AvatarURL    string `gorm:"type:varchar(255)" json:"avatarUrl,omitempty"`
	// 语言交换资料
	NativeLanguage   string `gorm:"type:varchar(50)" json:"nativeLanguage,omitempty"`
	LearningLanguage string `gorm:"type:varchar(50)" json:"learningLanguage,omitempty"`
	Location         string `gorm:"type:varchar(100)" json:"location,omitempty"`
	Bio              string `gorm:"type:text" json:"bio,omitempty"`
	// 只有完成引导流程的用户才会出现在推荐列表中
	IsOnboarded bool `gorm:"not null;default:false" json:"isOnboarded"`
}

// UserSummary holds the reduced projection of a user returned in list views
// (recommendations, friend lists, request expansion).
type UserSummary struct {
	ID               uint   `json:"id"`
	Username         string `json:"username"`
	Nickname         string `json:"nickname,omitempty"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	NativeLanguage   string `json:"nativeLanguage,omitempty"`
	LearningLanguage string `json:"learningLanguage,omitempty"`
}

// UserContact is the minimal name+avatar projection used when expanding the
// two parties of an accepted friend request.
type UserContact struct {
	ID        uint   `json:"id"`
	Nickname  string `json:"nickname,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// TableName 指定 User 模型的表名。
func (User) TableName() string {
	return "users"
}
