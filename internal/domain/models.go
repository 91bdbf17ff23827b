package domain

// Models lists every GORM model for auto-migration.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&FollowModel{},
		&BlockModel{},
		&PostModel{},
		&CommentModel{},
		&LikeModel{},
		&ListModel{},
		&ListPostModel{},
		&NotificationModel{},
		&VerificationCodeModel{},
	}
}
