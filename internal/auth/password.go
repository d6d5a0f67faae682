package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword 对用户注册/改密时提交的明文密码做 bcrypt 哈希。
// 数据库中只保存哈希值，User 模型从不序列化该字段。
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash 在登录时校验明文密码与存储的 bcrypt 哈希是否匹配。
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
