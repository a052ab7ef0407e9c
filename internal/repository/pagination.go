package repository

import "gorm.io/gorm"

// maxPageSize 单页上限，避免一次拉取整张活动或目录表
const maxPageSize = 100

// countAndPaginate 统计总数后追加分页条件，pageSize <= 0 时不分页
func countAndPaginate(query *gorm.DB, page, pageSize int) (*gorm.DB, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if pageSize <= 0 {
		return query, total, nil
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize), total, nil
}
